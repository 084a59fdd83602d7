package models

import "time"

// Key is a holder's credential within one pool.
//
// Invariants:
//   - A holder has at most one Key per pool
//   - TokenID 0 means no token-id is assigned
//   - An assigned TokenID maps to exactly one current holder
//   - Keys are never deleted; revocation sets ExpiresAt to the revoking operation's time
type Key struct {
	TokenID   uint64    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasTokenID reports whether a token-id was ever assigned and not cleared.
func (k Key) HasTokenID() bool {
	return k.TokenID != 0
}

// IsValid reports whether the key is still usable at now. Expiry is exclusive.
func (k Key) IsValid(now time.Time) bool {
	return k.ExpiresAt.After(now)
}

// Remaining is the validity left at now, never negative.
func (k Key) Remaining(now time.Time) time.Duration {
	if !k.IsValid(now) {
		return 0
	}
	return k.ExpiresAt.Sub(now)
}

// ExtendedBy returns k's expiration pushed out by the validity donor has left
// at now. The sum is taken on absolute instants so spans beyond the range of
// time.Duration are not truncated.
func (k Key) ExtendedBy(donor Key, now time.Time) time.Time {
	if !donor.IsValid(now) {
		return k.ExpiresAt
	}
	sec := k.ExpiresAt.Unix() + donor.ExpiresAt.Unix() - now.Unix()
	nsec := int64(k.ExpiresAt.Nanosecond()) + int64(donor.ExpiresAt.Nanosecond()) - int64(now.Nanosecond())
	return time.Unix(sec, nsec).In(k.ExpiresAt.Location())
}
