package light

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tendermint/ibclight/commitment"
	"github.com/tendermint/ibclight/libs/log"
	"github.com/tendermint/ibclight/light/store"
	"github.com/tendermint/ibclight/types"
)

// Status of a client.
type Status string

const (
	// Active clients accept updates and proof verification.
	Active Status = "Active"
	// Frozen clients detected misbehaviour. Frozen is permanent.
	Frozen Status = "Frozen"
	// Expired clients have no consensus state within the trusting period at
	// their latest height. Expired is derived, never stored.
	Expired Status = "Expired"
)

// Option sets a parameter for the light client.
type Option func(*Client)

// Logger option can be used to set a logger for the client.
func Logger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics option sets the metrics the client reports to. Default:
// NopMetrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Clock option replaces the host clock used for expiry and clock drift
// checks. Default: time.Now.
func Clock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// ZKProofs option sets the zero-knowledge proof verifier used by CometBLS
// clients.
func ZKProofs(v ZKProofVerifier) Option {
	return func(c *Client) {
		c.zk = v
	}
}

// Verifier option overrides the CommitVerifier otherwise chosen from the
// client type.
func Verifier(v CommitVerifier) Option {
	return func(c *Client) {
		c.verifier = v
	}
}

// Client is the light client of a single counterparty chain, identified by
// its client id. It keeps its client state and consensus states in a Store
// and verifies headers, misbehaviour and state proofs against them.
//
// Client holds no state of its own: concurrent reads are safe, but updates
// of the same client id must be serialized by the caller.
type Client struct {
	clientID string
	store    store.Store
	verifier CommitVerifier
	zk       ZKProofVerifier
	now      func() time.Time

	logger  log.Logger
	metrics *Metrics
}

// NewClient returns a client for clientID backed by st. The client state is
// created by CreateClient.
func NewClient(clientID string, st store.Store, options ...Option) (*Client, error) {
	if err := store.ValidateClientID(clientID); err != nil {
		return nil, err
	}
	c := &Client{
		clientID: clientID,
		store:    st,
		now:      time.Now,
		logger:   log.NewNopLogger(),
		metrics:  NopMetrics(),
	}
	for _, o := range options {
		o(c)
	}
	c.logger = c.logger.With("client", clientID)
	return c, nil
}

// ClientID returns the id of the client.
func (c *Client) ClientID() string { return c.clientID }

// CreateClient stores the initial client state and the consensus state at
// its latest height.
func (c *Client) CreateClient(cs *types.ClientState, cons *types.ConsensusState) error {
	if err := cs.Validate(); err != nil {
		return fmt.Errorf("invalid client state: %w", err)
	}
	if cs.IsFrozen() {
		return errors.New("cannot create a frozen client")
	}
	if err := cons.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid consensus state: %w", err)
	}
	if _, err := c.commitVerifier(cs); err != nil {
		return err
	}

	_, err := c.store.ClientState(c.clientID)
	switch {
	case err == nil:
		return ErrClientExists
	case !errors.Is(err, store.ErrClientStateNotFound):
		return err
	}

	if err := c.store.SaveConsensusState(c.clientID, cs.LatestHeight, cons); err != nil {
		return fmt.Errorf("failed to save consensus state: %w", err)
	}
	if err := c.store.SaveClientState(c.clientID, cs); err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}

	c.logger.Info("created client", "chain", cs.ChainID, "type", cs.Type, "height", cs.LatestHeight)
	c.setLatestHeight(cs.LatestHeight)
	return nil
}

// ClientState returns the stored client state.
func (c *Client) ClientState() (*types.ClientState, error) {
	return c.store.ClientState(c.clientID)
}

// LatestHeight returns the latest height of the client.
func (c *Client) LatestHeight() (types.Height, error) {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return types.Height{}, err
	}
	return cs.LatestHeight, nil
}

// TimestampAtHeight returns the timestamp, in unix nanoseconds, of the
// consensus state at height.
func (c *Client) TimestampAtHeight(height types.Height) (uint64, error) {
	cons, err := c.store.ConsensusState(c.clientID, height)
	if err != nil {
		return 0, err
	}
	return cons.Timestamp, nil
}

// Status returns the status of the client. A client whose latest consensus
// state is missing is Expired.
func (c *Client) Status() (Status, error) {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return "", err
	}
	return c.status(cs)
}

func (c *Client) status(cs *types.ClientState) (Status, error) {
	if cs.IsFrozen() {
		return Frozen, nil
	}
	cons, err := c.store.ConsensusState(c.clientID, cs.LatestHeight)
	switch {
	case errors.Is(err, store.ErrConsensusStateNotFound):
		return Expired, nil
	case err != nil:
		return "", err
	}
	if HeaderExpired(cons, cs.TrustingPeriod, c.now()) {
		return Expired, nil
	}
	return Active, nil
}

// VerifyClientMessage verifies a *types.Header or a *types.Misbehaviour
// against the trusted consensus states it refers to.
func (c *Client) VerifyClientMessage(msg interface{}) error {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return err
	}
	if cs.IsFrozen() {
		return ErrClientFrozen
	}

	start := time.Now()
	switch m := msg.(type) {
	case *types.Header:
		err = c.verifyHeader(cs, m)
		c.metrics.Verifications.With("client_id", c.clientID, "message", "header", "result", result(err)).Add(1)
	case *types.Misbehaviour:
		err = c.verifyMisbehaviour(cs, m)
		c.metrics.Verifications.With("client_id", c.clientID, "message", "misbehaviour", "result", result(err)).Add(1)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownClientMessage, msg)
	}
	c.metrics.VerificationTime.With("client_id", c.clientID).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error("client message failed verification", "err", err)
	}
	return err
}

func (c *Client) verifyHeader(cs *types.ClientState, header *types.Header) error {
	if header == nil {
		return ErrInvalidHeader{errors.New("nil header")}
	}
	verifier, err := c.commitVerifier(cs)
	if err != nil {
		return err
	}

	trusted, err := c.store.ConsensusState(c.clientID, header.TrustedHeight)
	if err != nil {
		return fmt.Errorf("could not get trusted consensus state at %v: %w", header.TrustedHeight, err)
	}

	if err := VerifyHeader(cs, trusted, header, c.now(), verifier); err != nil {
		return ErrVerificationFailed{
			ClientID: c.clientID,
			From:     header.TrustedHeight,
			To:       header.Height(),
			Reason:   err,
		}
	}
	return nil
}

func (c *Client) verifyMisbehaviour(cs *types.ClientState, m *types.Misbehaviour) error {
	if err := m.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid misbehaviour: %w", err)
	}
	if m.Header1.SignedHeader.ChainID != cs.ChainID {
		return fmt.Errorf("misbehaviour belongs to another chain %q, not %q", m.Header1.SignedHeader.ChainID, cs.ChainID)
	}
	if err := c.verifyHeader(cs, m.Header1); err != nil {
		return fmt.Errorf("header 1: %w", err)
	}
	if err := c.verifyHeader(cs, m.Header2); err != nil {
		return fmt.Errorf("header 2: %w", err)
	}
	return nil
}

// CheckForMisbehaviour reports whether a verified client message proves
// misbehaviour of the counterparty chain.
//
// A header is misbehaviour if a different consensus state is already stored
// at its height, or if its time does not fit between the nearest stored
// consensus states below and above it. A Misbehaviour is valid evidence if
// its headers share a height but differ, or if their times are not ordered
// like their heights.
func (c *Client) CheckForMisbehaviour(msg interface{}) (bool, error) {
	switch m := msg.(type) {
	case *types.Header:
		return c.checkHeader(m)
	case *types.Misbehaviour:
		return checkMisbehaviour(m)
	}
	return false, fmt.Errorf("%w: %T", ErrUnknownClientMessage, msg)
}

func (c *Client) checkHeader(header *types.Header) (bool, error) {
	if header == nil || header.SignedHeader == nil {
		return false, ErrInvalidHeader{errors.New("nil header")}
	}
	var (
		height = header.Height()
		cons   = header.ConsensusState()
	)

	existing, err := c.store.ConsensusState(c.clientID, height)
	switch {
	case err == nil:
		// An identical state means the header was already applied.
		return !existing.Equal(cons), nil
	case !errors.Is(err, store.ErrConsensusStateNotFound):
		return false, err
	}

	// No entry at height, so the lookups return strict neighbours.
	prev, err := c.store.NearestAtOrBefore(c.clientID, height)
	if err != nil {
		return false, err
	}
	if prev != nil && prev.Timestamp >= cons.Timestamp {
		return true, nil
	}

	next, err := c.store.NearestAtOrAfter(c.clientID, height)
	if err != nil {
		return false, err
	}
	if next != nil && next.Timestamp <= cons.Timestamp {
		return true, nil
	}
	return false, nil
}

func checkMisbehaviour(m *types.Misbehaviour) (bool, error) {
	if err := m.ValidateBasic(); err != nil {
		return false, err
	}
	h1, h2 := m.Header1, m.Header2
	if h1.Height() == h2.Height() {
		// Two headers at the same height are evidence of a fork.
		return !h1.SignedHeader.Hash().Equal(h2.SignedHeader.Hash()), nil
	}
	// Header1 is higher, so it must also be later.
	return !h1.Time().After(h2.Time()), nil
}

// UpdateStateOnMisbehaviour freezes the client at its latest height. There is
// no way to unfreeze a client.
func (c *Client) UpdateStateOnMisbehaviour(msg interface{}) error {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return err
	}
	if cs.IsFrozen() {
		return nil
	}

	cs.FrozenHeight = cs.LatestHeight
	if err := c.store.SaveClientState(c.clientID, cs); err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}

	c.logger.Error("client frozen due to misbehaviour", "frozen_height", cs.FrozenHeight, "evidence", fmt.Sprintf("%T", msg))
	c.metrics.Misbehaviours.With("client_id", c.clientID).Add(1)
	return nil
}

// UpdateState stores the consensus state of a verified header and advances
// the latest height. It returns the height of the consensus state.
//
// Updating with a header whose height already has a consensus state is a
// no-op, unless the stored state matches the header and lies above the latest
// height, in which case the latest height is advanced to it.
func (c *Client) UpdateState(header *types.Header) ([]types.Height, error) {
	if header == nil || header.SignedHeader == nil {
		return nil, ErrInvalidHeader{errors.New("nil header")}
	}
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return nil, err
	}
	height := header.Height()

	stored, err := c.store.ConsensusState(c.clientID, height)
	switch {
	case err == nil:
		// a previous update may have stored the consensus state but failed
		// to advance the latest height
		if stored.Equal(header.ConsensusState()) && height.GT(cs.LatestHeight) {
			if err := c.advanceLatestHeight(cs, height); err != nil {
				return nil, err
			}
			c.logger.Info("resumed client update", "height", height)
			return []types.Height{height}, nil
		}
		c.logger.Debug("consensus state already stored", "height", height)
		return []types.Height{height}, nil
	case !errors.Is(err, store.ErrConsensusStateNotFound):
		return nil, err
	}

	if err := c.store.SaveConsensusState(c.clientID, height, header.ConsensusState()); err != nil {
		return nil, fmt.Errorf("failed to save consensus state: %w", err)
	}
	if height.GT(cs.LatestHeight) {
		if err := c.advanceLatestHeight(cs, height); err != nil {
			return nil, err
		}
	}

	c.logger.Info("updated client", "height", height, "time", header.Time(), "latest", cs.LatestHeight)
	return []types.Height{height}, nil
}

func (c *Client) advanceLatestHeight(cs *types.ClientState, height types.Height) error {
	cs.LatestHeight = height
	if err := c.store.SaveClientState(c.clientID, cs); err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}
	c.setLatestHeight(height)
	return nil
}

func (c *Client) setLatestHeight(h types.Height) {
	c.metrics.LatestHeight.
		With("client_id", c.clientID, "revision", strconv.FormatUint(h.RevisionNumber, 10)).
		Set(float64(h.RevisionHeight))
}

// Update runs the full update flow for a client message: it checks the
// client is active, verifies the message, and either freezes the client on
// misbehaviour or applies the header. It returns the heights of the new
// consensus states, none if the client was frozen.
func (c *Client) Update(msg interface{}) ([]types.Height, error) {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return nil, err
	}
	switch status, err := c.status(cs); {
	case err != nil:
		return nil, err
	case status == Frozen:
		return nil, ErrClientFrozen
	case status != Active:
		return nil, fmt.Errorf("%w: status is %s", ErrClientNotActive, status)
	}

	if err := c.VerifyClientMessage(msg); err != nil {
		return nil, err
	}

	found, err := c.CheckForMisbehaviour(msg)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, c.UpdateStateOnMisbehaviour(msg)
	}

	header, ok := msg.(*types.Header)
	if !ok {
		return nil, errors.New("misbehaviour evidence is valid but does not prove misbehaviour")
	}
	return c.UpdateState(header)
}

// VerifyMembership verifies that value is stored at path in the state of
// the counterparty chain at height.
func (c *Client) VerifyMembership(height types.Height, proof commitment.MerkleProof,
	path commitment.MerklePath, value []byte) (err error) {
	defer func() {
		c.metrics.ProofVerifications.With("client_id", c.clientID, "kind", "membership", "result", result(err)).Add(1)
	}()

	cs, root, err := c.proofRoot(height)
	if err != nil {
		return err
	}
	return proof.VerifyMembership(cs.ProofSpecs, root, path, value)
}

// VerifyNonMembership verifies that nothing is stored at path in the state of
// the counterparty chain at height.
func (c *Client) VerifyNonMembership(height types.Height, proof commitment.MerkleProof,
	path commitment.MerklePath) (err error) {
	defer func() {
		c.metrics.ProofVerifications.With("client_id", c.clientID, "kind", "non_membership", "result", result(err)).Add(1)
	}()

	cs, root, err := c.proofRoot(height)
	if err != nil {
		return err
	}
	return proof.VerifyNonMembership(cs.ProofSpecs, root, path)
}

func (c *Client) proofRoot(height types.Height) (*types.ClientState, commitment.MerkleRoot, error) {
	cs, err := c.store.ClientState(c.clientID)
	if err != nil {
		return nil, commitment.MerkleRoot{}, err
	}
	if cs.IsFrozen() {
		return nil, commitment.MerkleRoot{}, ErrClientFrozen
	}
	if cs.LatestHeight.LT(height) {
		return nil, commitment.MerkleRoot{}, fmt.Errorf("client latest height %v is below proof height %v", cs.LatestHeight, height)
	}
	cons, err := c.store.ConsensusState(c.clientID, height)
	if err != nil {
		return nil, commitment.MerkleRoot{}, fmt.Errorf("could not get consensus state at %v: %w", height, err)
	}
	return cs, commitment.NewMerkleRoot(cons.Root), nil
}

func (c *Client) commitVerifier(cs *types.ClientState) (CommitVerifier, error) {
	if c.verifier != nil {
		return c.verifier, nil
	}
	return NewCommitVerifier(cs.Type, c.zk)
}
