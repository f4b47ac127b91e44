package light

import (
	"errors"
	"fmt"
	"time"

	"github.com/tendermint/ibclight/types"
)

var (
	// ErrClientFrozen is returned for any verification against a client that
	// has been frozen by misbehaviour.
	ErrClientFrozen = errors.New("client is frozen due to misbehaviour")

	// ErrClientNotActive is returned when updating an expired client.
	ErrClientNotActive = errors.New("client is not active")

	// ErrUnknownClientMessage is returned for client messages that are
	// neither a *types.Header nor a *types.Misbehaviour.
	ErrUnknownClientMessage = errors.New("unknown client message type")

	// ErrClientExists is returned by CreateClient when the client id is taken.
	ErrClientExists = errors.New("client already exists")
)

// ErrHeightNotIncreasing means the header is not above its trusted height.
type ErrHeightNotIncreasing struct {
	Trusted   types.Height
	Untrusted types.Height
}

func (e ErrHeightNotIncreasing) Error() string {
	return fmt.Sprintf("expected new header height %v to be greater than trusted height %v",
		e.Untrusted, e.Trusted)
}

// ErrTimeNotIncreasing means the header time is not after the trusted
// consensus state time.
type ErrTimeNotIncreasing struct {
	Trusted   time.Time
	Untrusted time.Time
}

func (e ErrTimeNotIncreasing) Error() string {
	return fmt.Sprintf("expected new header time %v to be after trusted time %v",
		e.Untrusted, e.Trusted)
}

// ErrOldHeaderExpired means the old (trusted) header has expired according to
// the given trustingPeriod and current time. If so, the light client must be
// reset subjectively.
type ErrOldHeaderExpired struct {
	At  time.Time
	Now time.Time
}

func (e ErrOldHeaderExpired) Error() string {
	return fmt.Sprintf("old header has expired at %v (now: %v)", e.At, e.Now)
}

// ErrHeaderFromFuture means the header time is not before now plus the
// allowed clock drift.
type ErrHeaderFromFuture struct {
	HeaderTime    time.Time
	Now           time.Time
	MaxClockDrift time.Duration
}

func (e ErrHeaderFromFuture) Error() string {
	return fmt.Sprintf("new header has a time from the future %v (now: %v; max clock drift: %v)",
		e.HeaderTime, e.Now, e.MaxClockDrift)
}

// ErrValidatorsHashMismatch means an adjacent header was not signed by the
// validator set the trusted consensus state committed to.
type ErrValidatorsHashMismatch struct {
	Expected []byte
	Actual   []byte
}

func (e ErrValidatorsHashMismatch) Error() string {
	return fmt.Sprintf("expected old header next validators (%X) to match those from new header (%X)",
		e.Expected, e.Actual)
}

// ErrNewValSetCantBeTrusted means the new validator set cannot be trusted
// because < 1/3rd (+trustLevel+) of the old validator set has signed.
type ErrNewValSetCantBeTrusted struct {
	Reason types.ErrNotEnoughVotingPowerSigned
}

func (e ErrNewValSetCantBeTrusted) Error() string {
	return fmt.Sprintf("cant trust new val set: %v", e.Reason)
}

// ErrInvalidHeader means the header either failed the basic validation or
// commit is not signed by 2/3+.
type ErrInvalidHeader struct {
	Reason error
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid header: %v", e.Reason)
}

// Unwrap returns underlying reason.
func (e ErrInvalidHeader) Unwrap() error {
	return e.Reason
}

// ErrVerificationFailed means a client message could not be verified against
// the trusted state at the given height.
type ErrVerificationFailed struct {
	ClientID string
	From     types.Height
	To       types.Height
	Reason   error
}

// Unwrap returns underlying reason.
func (e ErrVerificationFailed) Unwrap() error {
	return e.Reason
}

func (e ErrVerificationFailed) Error() string {
	return fmt.Sprintf(
		"client %s: verify from %v to %v failed: %v",
		e.ClientID, e.From, e.To, e.Reason)
}
