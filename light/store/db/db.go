package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ibclight/light/store"
	"github.com/tendermint/ibclight/types"
)

const (
	prefixClientState    = int64(1)
	prefixConsensusState = int64(2)
)

type dbs struct {
	db dbm.DB

	mtx sync.RWMutex
}

// New returns a Store that wraps any DB.
//
// Every client gets its own "clients/{id}/" namespace holding the client
// state, the consensus states and the height index.
func New(db dbm.DB) store.Store {
	return &dbs{db: db}
}

func (s *dbs) clientDB(clientID string) (dbm.DB, error) {
	if err := store.ValidateClientID(clientID); err != nil {
		return nil, err
	}
	return dbm.NewPrefixDB(s.db, []byte("clients/"+clientID+"/")), nil
}

// ClientState loads the client state of clientID.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ClientState(clientID string) (*types.ClientState, error) {
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	bz, err := cdb.Get(clientStateKey())
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, store.ErrClientStateNotFound
	}

	cs := new(types.ClientState)
	if err := cs.Unmarshal(bz); err != nil {
		return nil, err
	}
	return cs, nil
}

// SaveClientState persists the client state of clientID.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) SaveClientState(clientID string, cs *types.ClientState) error {
	if cs == nil {
		return errors.New("client state cannot be nil")
	}
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	return cdb.SetSync(clientStateKey(), cs.Marshal())
}

// ConsensusState loads the consensus state of clientID at height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusState(clientID string, height types.Height) (*types.ConsensusState, error) {
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	bz, err := cdb.Get(consensusStateKey(height))
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, store.ErrConsensusStateNotFound
	}

	cs := new(types.ConsensusState)
	if err := cs.Unmarshal(bz); err != nil {
		return nil, err
	}
	return cs, nil
}

// SaveConsensusState persists the consensus state at height and its index
// entry in a single batch.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) SaveConsensusState(clientID string, height types.Height, cs *types.ConsensusState) error {
	if cs == nil {
		return errors.New("consensus state cannot be nil")
	}
	if height.IsZero() {
		return errors.New("height cannot be zero")
	}
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	b := cdb.NewBatch()
	defer b.Close()
	if err = b.Set(consensusStateKey(height), cs.Marshal()); err != nil {
		return err
	}
	if err = b.Set(store.IndexKey(height), store.EncodeIndexValue(cs.Timestamp)); err != nil {
		return err
	}
	return b.WriteSync()
}

// NearestAtOrBefore walks the height index backwards from height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) NearestAtOrBefore(clientID string, height types.Height) (*store.IndexEntry, error) {
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	// The end bound is exclusive; the zero byte makes it include height.
	end := append(store.IndexKey(height), 0x00)
	itr, err := cdb.ReverseIterator(store.IndexStart, end)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	return firstEntry(itr)
}

// NearestAtOrAfter walks the height index forwards from height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) NearestAtOrAfter(clientID string, height types.Height) (*store.IndexEntry, error) {
	cdb, err := s.clientDB(clientID)
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	itr, err := cdb.Iterator(store.IndexKey(height), store.IndexEnd)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	return firstEntry(itr)
}

func firstEntry(itr dbm.Iterator) (*store.IndexEntry, error) {
	if !itr.Valid() {
		return nil, itr.Error()
	}
	entry, err := store.DecodeIndexEntry(itr.Key(), itr.Value())
	if err != nil {
		return nil, fmt.Errorf("index entry %X: %w", itr.Key(), err)
	}
	return entry, nil
}

func clientStateKey() []byte {
	key, err := orderedcode.Append(nil, prefixClientState)
	if err != nil {
		panic(err)
	}
	return key
}

func consensusStateKey(height types.Height) []byte {
	key, err := orderedcode.Append(nil, prefixConsensusState, height.RevisionNumber, height.RevisionHeight)
	if err != nil {
		panic(err)
	}
	return key
}
