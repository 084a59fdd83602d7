package lock

import (
	"context"
	"math/big"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"keyledger/internal/events"
	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

func (s *LockSuite) TestUpdateKeyPrice() {
	s.Require().NoError(s.lock.UpdateKeyPrice(s.at(owner, s.t0, 0), big.NewInt(2000)))
	s.Equal(int64(2000), s.lock.KeyPrice(s.at(alice, s.t0, 0)).Int64())

	_, err := s.lock.Purchase(s.at(alice, s.t0, 1000), alice, domain.ZeroAddress)
	s.ErrorIs(err, models.ErrInsufficientPayment)
	_, err = s.lock.Purchase(s.at(alice, s.t0, 2000), alice, domain.ZeroAddress)
	s.Require().NoError(err)

	changes := s.store.ByKind(events.KindPriceChanged)
	s.Require().Len(changes, 1)
	payload := changes[0].Payload.(events.PriceChanged)
	s.Equal(int64(1000), payload.OldPrice.Int64())
	s.Equal(int64(2000), payload.NewPrice.Int64())

	s.ErrorIs(s.lock.UpdateKeyPrice(s.at(alice, s.t0, 0), big.NewInt(1)), models.ErrUnauthorized)
	s.ErrorIs(s.lock.UpdateKeyPrice(s.at(owner, s.t0, 0), big.NewInt(-1)), models.ErrInvalidPrice)
	s.ErrorIs(s.lock.UpdateKeyPrice(s.at(owner, s.t0, 0), nil), models.ErrInvalidPrice)
}

func (s *LockSuite) TestExpireKeyFor() {
	id := s.buy(alice, s.t0)
	now := s.t0.Add(day)

	s.ErrorIs(s.lock.ExpireKeyFor(s.at(alice, now, 0), alice), models.ErrUnauthorized)
	s.ErrorIs(s.lock.ExpireKeyFor(s.at(owner, now, 0), bob), models.ErrNoSuchKey)

	s.Require().NoError(s.lock.ExpireKeyFor(s.at(owner, now, 0), alice))
	s.False(s.lock.HasValidKey(s.at(owner, now, 0), alice))
	s.Equal(now, s.lock.KeyExpirationTimestampFor(s.at(owner, now, 0), alice))
	s.Equal(int64(1000), s.lock.Balance(s.at(owner, now, 0)).Int64(), "no refund")

	expired := s.store.ByKind(events.KindExpireKeyByOwner)
	s.Require().Len(expired, 1)
	s.Equal(events.ExpireKeyByOwner{Holder: alice, TokenID: id}, expired[0].Payload)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.KeysCancelled.WithLabelValues("owner")))
}

func (s *LockSuite) TestWithdraw() {
	s.ErrorIs(s.lock.Withdraw(s.at(owner, s.t0, 0), nil), models.ErrInsufficientBalance)

	s.buy(alice, s.t0)
	s.buy(bob, s.t0)

	s.Run("owner only", func() {
		err := s.lock.Withdraw(s.at(alice, s.t0, 0), big.NewInt(1))
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("partial withdrawal", func() {
		s.Require().NoError(s.lock.Withdraw(s.at(owner, s.t0, 0), big.NewInt(500)))
		s.Equal(int64(500), s.native(owner))
		s.Equal(int64(1500), s.lock.Balance(s.at(owner, s.t0, 0)).Int64())

		withdrawals := s.store.ByKind(events.KindWithdrawal)
		s.Require().Len(withdrawals, 1)
		s.Equal(owner, withdrawals[0].Payload.(events.Withdrawal).Beneficiary)
	})

	s.Run("more than the balance is rejected", func() {
		err := s.lock.Withdraw(s.at(owner, s.t0, 0), big.NewInt(1501))
		s.Require().ErrorIs(err, models.ErrInsufficientBalance)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("zero withdraws everything", func() {
		s.Require().NoError(s.lock.Withdraw(s.at(owner, s.t0, 0), big.NewInt(0)))
		s.Equal(int64(2000), s.native(owner))
		s.Zero(s.lock.Balance(s.at(owner, s.t0, 0)).Sign())
	})
}

func (s *LockSuite) TestLifecycle() {
	var tombstone *models.Snapshot
	s.lock = s.newLock(models.Config{
		Name:               "Members",
		KeyPrice:           big.NewInt(1000),
		MaxNumberOfKeys:    10,
		ExpirationDuration: 30 * day,
	}, WithDestroyHook(func(_ context.Context, snap models.Snapshot) {
		tombstone = &snap
	}))
	aliceID := s.buy(alice, s.t0)
	s.buy(bob, s.t0)

	s.Run("destroy requires a disabled pool", func() {
		err := s.lock.DestroyLock(s.at(owner, s.t0, 0))
		s.Require().ErrorIs(err, models.ErrDisableFirst)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("only the owner disables", func() {
		s.ErrorIs(s.lock.DisableLock(s.at(alice, s.t0, 0)), models.ErrUnauthorized)
	})

	s.Run("disabled pool stops sales and moves but still refunds", func() {
		s.Require().NoError(s.lock.DisableLock(s.at(owner, s.t0, 0)))
		s.Equal(models.StatusDisabled, s.lock.Status(s.at(owner, s.t0, 0)))
		s.Len(s.store.ByKind(events.KindDisable), 1)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.PoolsDisabled))

		_, err := s.lock.Purchase(s.at(carol, s.t0, 1000), carol, domain.ZeroAddress)
		s.ErrorIs(err, models.ErrLockNotAlive)
		s.ErrorIs(s.lock.TransferFrom(s.at(alice, s.t0, 0), alice, carol, aliceID), models.ErrLockNotAlive)
		s.ErrorIs(s.lock.Approve(s.at(alice, s.t0, 0), carol, aliceID), models.ErrLockNotAlive)
		s.ErrorIs(s.lock.Grant(s.at(owner, s.t0, 0), carol, s.t0.Add(day)), models.ErrLockNotAlive)
		s.ErrorIs(s.lock.DisableLock(s.at(owner, s.t0, 0)), models.ErrLockNotAlive)

		refund, err := s.lock.CancelAndRefund(s.at(bob, s.t0, 0))
		s.Require().NoError(err)
		s.Equal(int64(900), refund.Int64())
	})

	s.Run("destroy sweeps the balance to the owner", func() {
		s.Require().NoError(s.lock.DestroyLock(s.at(owner, s.t0, 0)))
		s.Equal(int64(1100), s.native(owner))
		s.Zero(s.lock.Balance(s.at(owner, s.t0, 0)).Sign())

		destroys := s.store.ByKind(events.KindDestroy)
		s.Require().Len(destroys, 1)
		payload := destroys[0].Payload.(events.Destroy)
		s.Equal(int64(1100), payload.Balance.Int64())
		s.Equal(owner, payload.Owner)

		s.Require().NotNil(tombstone)
		s.Equal(models.StatusDecommissioned, tombstone.Status)
		s.Equal([]domain.Address{alice, bob}, tombstone.Owners)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.PoolsDestroyed))
	})

	s.Run("tombstone rejects every mutation but stays readable", func() {
		_, err := s.lock.CancelAndRefund(s.at(alice, s.t0, 0))
		s.ErrorIs(err, models.ErrDecommissioned)
		s.ErrorIs(s.lock.Withdraw(s.at(owner, s.t0, 0), nil), models.ErrDecommissioned)
		s.ErrorIs(s.lock.UpdateLockName(s.at(owner, s.t0, 0), "again"), models.ErrDecommissioned)
		s.ErrorIs(s.lock.DestroyLock(s.at(owner, s.t0, 0)), models.ErrDecommissioned)

		s.Equal("Members", s.lock.Name(s.at(alice, s.t0, 0)))
		s.Equal(models.StatusDecommissioned, s.lock.Status(s.at(alice, s.t0, 0)))
		s.False(s.lock.IsAlive(s.at(alice, s.t0, 0)))
		s.True(s.lock.HasValidKey(s.at(alice, s.t0, 0), alice))
	})
}
