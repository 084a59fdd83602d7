package lock

import (
	"context"
	"math"
	"time"

	"keyledger/internal/ledger"
	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	"keyledger/pkg/requestcontext"
)

func (l *Lock) hasValidKey(holder domain.Address, now time.Time) bool {
	return l.st.keys[holder].IsValid(now)
}

// assignTokenID gives key a fresh token-id from the sold counter unless it
// already has one.
func (l *Lock) assignTokenID(tx *ledger.Tx, key *models.Key) {
	if key.HasTokenID() {
		return
	}
	ledger.Set(tx, &l.st.sold, l.st.sold+1)
	key.TokenID = l.st.sold
}

// recordOwner appends holder to the participation log when it becomes the
// holder of tokenID.
func (l *Lock) recordOwner(tx *ledger.Tx, holder domain.Address, tokenID uint64) {
	if current, ok := l.st.ownerOf[tokenID]; ok && current == holder {
		return
	}
	ledger.Append(tx, &l.st.owners, holder)
	ledger.Put(tx, l.st.ownerOf, tokenID, holder)
}

// holderOf resolves the current holder of tokenID. A token-id whose holder has
// since transferred it away or merged it into another key has no holder.
func (l *Lock) holderOf(tokenID uint64) (domain.Address, bool) {
	if tokenID == 0 {
		return domain.ZeroAddress, false
	}
	holder, ok := l.st.ownerOf[tokenID]
	if !ok || l.st.keys[holder].TokenID != tokenID {
		return domain.ZeroAddress, false
	}
	return holder, true
}

// HasValidKey reports whether holder's key expires strictly after now.
func (l *Lock) HasValidKey(ctx context.Context, holder domain.Address) bool {
	var ok bool
	_ = l.view(ctx, func(ctx context.Context) error {
		ok = l.hasValidKey(holder, requestcontext.Now(ctx))
		return nil
	})
	return ok
}

// BalanceOf is 1 when holder has a valid key, otherwise 0.
func (l *Lock) BalanceOf(ctx context.Context, holder domain.Address) uint64 {
	if l.HasValidKey(ctx, holder) {
		return 1
	}
	return 0
}

// KeyExpirationTimestampFor returns the expiration of holder's key, or the zero
// time when holder never had one.
func (l *Lock) KeyExpirationTimestampFor(ctx context.Context, holder domain.Address) time.Time {
	var exp time.Time
	_ = l.view(ctx, func(context.Context) error {
		exp = l.st.keys[holder].ExpiresAt
		return nil
	})
	return exp
}

// TokenIDFor returns holder's token-id, 0 when unassigned.
func (l *Lock) TokenIDFor(ctx context.Context, holder domain.Address) uint64 {
	var id uint64
	_ = l.view(ctx, func(context.Context) error {
		id = l.st.keys[holder].TokenID
		return nil
	})
	return id
}

// Key returns holder's key record.
func (l *Lock) Key(ctx context.Context, holder domain.Address) (models.Key, bool) {
	var (
		key models.Key
		ok  bool
	)
	_ = l.view(ctx, func(context.Context) error {
		key, ok = l.st.keys[holder]
		return nil
	})
	return key, ok
}

// OwnerOf returns the current holder of tokenID.
func (l *Lock) OwnerOf(ctx context.Context, tokenID uint64) (domain.Address, error) {
	var holder domain.Address
	err := l.view(ctx, func(context.Context) error {
		h, ok := l.holderOf(tokenID)
		if !ok {
			return models.Fail(models.ErrNoSuchKey, "owner of")
		}
		holder = h
		return nil
	})
	return holder, err
}

// NumberOfOwners is the length of the participation log. Holders appear once
// per token-id they came to hold, so the count includes repeats.
func (l *Lock) NumberOfOwners(ctx context.Context) int {
	var n int
	_ = l.view(ctx, func(context.Context) error {
		n = len(l.st.owners)
		return nil
	})
	return n
}

// TotalSupply is the sold counter: every token-id ever assigned.
func (l *Lock) TotalSupply(ctx context.Context) uint64 {
	var n uint64
	_ = l.view(ctx, func(context.Context) error {
		n = l.st.sold
		return nil
	})
	return n
}

// OwnersByPage returns the participation log entries [page*size, page*size+size),
// clamped at the tail. An empty log is an error, as is a page starting past the end.
func (l *Lock) OwnersByPage(ctx context.Context, page, pageSize uint64) ([]domain.Address, error) {
	var out []domain.Address
	err := l.view(ctx, func(context.Context) error {
		total := uint64(len(l.st.owners))
		if total == 0 {
			return models.Fail(models.ErrNoOutstandingKeys, "owners by page")
		}
		if pageSize != 0 && page > math.MaxUint64/pageSize {
			return models.Fail(models.ErrPageOutOfRange, "owners by page")
		}
		start := page * pageSize
		if start > total {
			return models.Fail(models.ErrPageOutOfRange, "owners by page")
		}
		end := total
		if pageSize <= total-start {
			end = start + pageSize
		}
		out = append([]domain.Address{}, l.st.owners[start:end]...)
		return nil
	})
	return out, err
}
