package paramsig

import (
	"time"

	"code.extranets.org/golang/internal/session"
)

// ReplayGuard records accepted signatures to reject them when presented again.
//
// Signatures are bucketed by the pseudo time of their emission date, with a pseudo time step of a
// quarter of the window. Buckets expire automatically, a ReplayGuard uses bounded memory as long as
// its window is not smaller than the validity of the Signer that uses it.
type ReplayGuard struct {
	clock session.Clock
	seen  *session.MemStore[session.Stamp, struct{}]
}

// NewReplayGuard returns a ReplayGuard for signatures valid during window.
// It errors if window <= 0.
func NewReplayGuard(window time.Duration) (*ReplayGuard, error) {
	if window <= 0 {
		return nil, newError(ErrInvalidArgument, "invalid window %v <= 0", window)
	}
	rg := &ReplayGuard{seen: session.NewMemStore[session.Stamp, struct{}]()}
	err := rg.clock.Init(max(window/4, 1))
	if nil != err {
		return nil, wrapError(err, ErrInternal, "failed initializing clock")
	}
	return rg, nil
}

// Seen returns true if signature was already recorded for the emission date at.
// Otherwise it records signature and returns false.
//
// Seen also returns true if at is too old to be recorded.
func (self *ReplayGuard) Seen(signature string, at time.Time) bool {
	key := session.Stamp{Key: signature, Tick: self.clock.Tick(at)}
	return !self.seen.Add(key, struct{}{})
}
