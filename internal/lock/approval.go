package lock

import (
	"context"

	"keyledger/internal/events"
	"keyledger/internal/ledger"
	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

// canManage is the authorization predicate shared by approvals and transfers:
// the holder, the token's approved address, or one of the holder's operators.
func (l *Lock) canManage(holder domain.Address, tokenID uint64, caller domain.Address) bool {
	if caller == holder {
		return true
	}
	if approved, ok := l.st.approved[tokenID]; ok && approved == caller {
		return true
	}
	return l.st.operators[operatorKey{owner: holder, operator: caller}]
}

func (l *Lock) clearApproval(tx *ledger.Tx, tokenID uint64) {
	ledger.Delete(tx, l.st.approved, tokenID)
}

// Approve lets approved transfer tokenID once. Each call replaces the previous
// approval; approving the zero address clears it.
func (l *Lock) Approve(ctx context.Context, approved domain.Address, tokenID uint64) error {
	const op = "approve"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyIfAlive(op); err != nil {
			return err
		}
		if approved == c.caller {
			return models.Fail(models.ErrApproveSelf, op)
		}
		holder, ok := l.holderOf(tokenID)
		if !ok {
			return models.Fail(models.ErrNoSuchKey, op)
		}
		if !l.canManage(holder, tokenID, c.caller) {
			return models.Fail(models.ErrUnauthorized, op)
		}

		ledger.Put(tx, l.st.approved, tokenID, approved)
		tx.Emit(l.address, events.KindApproval, events.Approval{Owner: holder, Approved: approved, TokenID: tokenID})
		l.committed(tx, "key approval set", "holder", holder.Hex(), "token_id", tokenID, "approved", approved.Hex())
		return nil
	})
}

// SetApprovalForAll grants or revokes operator rights over every key the
// caller holds, now and later.
func (l *Lock) SetApprovalForAll(ctx context.Context, operator domain.Address, approved bool) error {
	const op = "set approval for all"
	return l.run(ctx, op, false, func(ctx context.Context, tx *ledger.Tx, c call) error {
		if err := l.onlyIfAlive(op); err != nil {
			return err
		}
		if operator == c.caller {
			return models.Fail(models.ErrApproveSelf, op)
		}

		ledger.Put(tx, l.st.operators, operatorKey{owner: c.caller, operator: operator}, approved)
		tx.Emit(l.address, events.KindApprovalForAll, events.ApprovalForAll{Owner: c.caller, Operator: operator, Approved: approved})
		return nil
	})
}

// GetApproved returns the approved address of tokenID, zero when none.
func (l *Lock) GetApproved(ctx context.Context, tokenID uint64) (domain.Address, error) {
	var out domain.Address
	err := l.view(ctx, func(context.Context) error {
		if _, ok := l.holderOf(tokenID); !ok {
			return models.Fail(models.ErrNoSuchKey, "get approved")
		}
		out = l.st.approved[tokenID]
		return nil
	})
	return out, err
}

// IsApprovedForAll reports whether operator manages every key of owner.
func (l *Lock) IsApprovedForAll(ctx context.Context, owner, operator domain.Address) bool {
	var ok bool
	_ = l.view(ctx, func(context.Context) error {
		ok = l.st.operators[operatorKey{owner: owner, operator: operator}]
		return nil
	})
	return ok
}
