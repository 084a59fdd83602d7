package lock

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"keyledger/internal/events"
	"keyledger/internal/lock/models"
	"keyledger/internal/signature"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/requestcontext"
)

type paymentReceiverFunc func(ctx context.Context, from domain.Address, amount *big.Int) error

func (f paymentReceiverFunc) OnPaymentReceived(ctx context.Context, from domain.Address, amount *big.Int) error {
	return f(ctx, from, amount)
}

func (s *LockSuite) TestCancelAndRefund() {
	s.buy(alice, s.t0)
	s.buy(bob, s.t0)

	s.Run("full duration left refunds the price minus the penalty", func() {
		s.Equal(int64(900), s.lock.CancelAndRefundValueFor(s.at(alice, s.t0, 0), alice).Int64())

		refund, err := s.lock.CancelAndRefund(s.at(alice, s.t0, 0))
		s.Require().NoError(err)
		s.Equal(int64(900), refund.Int64())
		s.Equal(int64(999_900), s.native(alice))
		s.False(s.lock.HasValidKey(s.at(alice, s.t0, 0), alice))
		s.Equal(uint64(1), s.lock.TokenIDFor(s.at(alice, s.t0, 0), alice), "cancelled keys keep their token-id")

		cancels := s.store.ByKind(events.KindCancelKey)
		s.Require().Len(cancels, 1)
		s.Equal(events.CancelKey{TokenID: 1, Holder: alice, SendTo: alice, Refund: big.NewInt(900)}, cancels[0].Payload)
	})

	s.Run("refund is pro-rated", func() {
		half := s.t0.Add(15 * day)
		refund, err := s.lock.CancelAndRefund(s.at(bob, half, 0))
		s.Require().NoError(err)
		s.Equal(int64(400), refund.Int64())
		s.Equal(float64(1300), testutil.ToFloat64(s.metrics.RefundsPaid))
	})

	s.Run("cancelling twice fails", func() {
		_, err := s.lock.CancelAndRefund(s.at(alice, s.t0, 0))
		s.Require().ErrorIs(err, models.ErrNoSuchKey)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("refund never goes negative", func() {
		s.buy(carol, s.t0)
		late := s.t0.Add(29 * day)
		s.Zero(s.lock.CancelAndRefundValueFor(s.at(carol, late, 0), carol).Sign())
	})
}

func (s *LockSuite) TestRefundPenalty() {
	s.buy(alice, s.t0)

	s.Require().NoError(s.lock.UpdateRefundPenalty(s.at(owner, s.t0, 0), 1, 4))
	s.Equal(int64(750), s.lock.CancelAndRefundValueFor(s.at(alice, s.t0, 0), alice).Int64())

	s.Require().NoError(s.lock.UpdateRefundPenalty(s.at(owner, s.t0, 0), 0, 1))
	s.Equal(int64(1000), s.lock.CancelAndRefundValueFor(s.at(alice, s.t0, 0), alice).Int64())

	s.ErrorIs(s.lock.UpdateRefundPenalty(s.at(owner, s.t0, 0), 1, 0), models.ErrInvalidRatio)
	s.ErrorIs(s.lock.UpdateRefundPenalty(s.at(alice, s.t0, 0), 1, 2), models.ErrUnauthorized)
	s.Equal(models.Ratio{Numerator: 0, Denominator: 1}, s.lock.RefundPenaltyRatio(s.at(alice, s.t0, 0)))
}

func (s *LockSuite) TestRefundNeverExceedsPrice() {
	s.buy(alice, s.t0)
	s.buy(alice, s.t0)
	price := big.NewInt(1000)
	expires := s.t0.Add(60 * day)

	for _, penalty := range []models.Ratio{{Numerator: 0, Denominator: 1}, {Numerator: 1, Denominator: 10}, {Numerator: 3, Denominator: 2}} {
		s.Require().NoError(s.lock.UpdateRefundPenalty(s.at(owner, s.t0, 0), penalty.Numerator, penalty.Denominator))
		prev := new(big.Int)
		for _, remaining := range []time.Duration{0, time.Second, day, 15 * day, 30 * day, 45 * day, 60 * day} {
			refund := s.lock.CancelAndRefundValueFor(s.at(alice, expires.Add(-remaining), 0), alice)
			s.True(refund.Sign() >= 0)
			s.True(refund.Cmp(price) <= 0, "refund %s above price at %s remaining", refund, remaining)
			s.True(refund.Cmp(prev) >= 0, "refund dropped at %s remaining", remaining)
			prev = refund
		}
	}
}

func (s *LockSuite) TestDelegatedCancel() {
	priv, holder, err := signature.GenerateKey()
	s.Require().NoError(err)
	s.Require().NoError(s.bank.Mint(s.at(owner, s.t0, 0), holder, big.NewInt(5000)))
	s.buy(holder, s.t0)

	sign := func(submitter domain.Address) []byte {
		digest := s.lock.CancelAndRefundApprovalHash(s.at(submitter, s.t0, 0), holder, submitter)
		return signature.SignMessageHash(priv, digest)
	}
	sig := sign(carol)

	s.Run("signature for another submitter is rejected", func() {
		_, err := s.lock.CancelAndRefundFor(s.at(dave, s.t0, 0), holder, sig)
		s.Require().ErrorIs(err, models.ErrInvalidSignature)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("high-s twin is rejected as non-canonical", func() {
		var sv secp256k1.ModNScalar
		sv.SetByteSlice(sig[32:64])
		sv.Negate()
		high := sv.Bytes()
		twin := append([]byte(nil), sig...)
		copy(twin[32:64], high[:])
		twin[64] ^= 27 ^ 28

		_, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, twin)
		s.ErrorIs(err, models.ErrNonCanonicalSignature)
	})

	s.Run("the named submitter cancels and collects the refund", func() {
		refund, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, sig)
		s.Require().NoError(err)
		s.Equal(int64(900), refund.Int64())
		s.Equal(int64(1_000_900), s.native(carol))
		s.Equal(int64(4000), s.native(holder))
		s.False(s.lock.HasValidKey(s.at(carol, s.t0, 0), holder))
		s.Equal(uint64(1), s.lock.KeyOwnerToNonce(s.at(carol, s.t0, 0), holder))

		cancel := s.store.ByKind(events.KindCancelKey)
		s.Require().Len(cancel, 1)
		s.True(cancel[0].Payload.(events.CancelKey).Delegated)
		s.Require().Len(s.store.ByKind(events.KindNonceChanged), 1)
	})

	s.Run("replay fails once the nonce moved", func() {
		s.buy(holder, s.t0)
		_, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, sig)
		s.ErrorIs(err, models.ErrInvalidSignature)
		s.Equal(uint64(1), s.lock.KeyOwnerToNonce(s.at(carol, s.t0, 0), holder))
	})

	s.Run("holder can revoke outstanding signatures", func() {
		fresh := sign(carol)
		s.Require().NoError(s.lock.IncrementNonce(s.at(holder, s.t0, 0)))
		_, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, fresh)
		s.ErrorIs(err, models.ErrInvalidSignature)
		s.True(s.lock.HasValidKey(s.at(carol, s.t0, 0), holder))
	})

	s.Run("malformed signature is rejected", func() {
		_, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, []byte{1, 2, 3})
		s.ErrorIs(err, models.ErrInvalidSignature)
	})

	s.Run("only a signature at the current nonce is honoured", func() {
		before := s.lock.KeyOwnerToNonce(s.at(carol, s.t0, 0), holder)
		stale := sign(carol)
		s.Require().NoError(s.lock.IncrementNonce(s.at(holder, s.t0, 0)))
		s.Require().NoError(s.lock.IncrementNonce(s.at(holder, s.t0, 0)))
		s.Equal(before+2, s.lock.KeyOwnerToNonce(s.at(carol, s.t0, 0), holder))

		_, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, stale)
		s.Require().ErrorIs(err, models.ErrInvalidSignature)
		s.True(s.lock.HasValidKey(s.at(carol, s.t0, 0), holder))

		refund, err := s.lock.CancelAndRefundFor(s.at(carol, s.t0, 0), holder, sign(carol))
		s.Require().NoError(err)
		s.Equal(int64(900), refund.Int64())
		s.False(s.lock.HasValidKey(s.at(carol, s.t0, 0), holder))
		s.Equal(before+3, s.lock.KeyOwnerToNonce(s.at(carol, s.t0, 0), holder))
	})
}

func (s *LockSuite) TestRefundReentrancy() {
	attacker := domain.MustParseAddress("0x00000000000000000000000000000000000000ee")
	var (
		calls    int
		innerErr error
	)
	s.Require().NoError(s.accounts.Register(attacker, paymentReceiverFunc(func(ctx context.Context, from domain.Address, amount *big.Int) error {
		calls++
		s.Equal(poolAddr, from)
		s.False(s.lock.HasValidKey(ctx, attacker), "key is dead before the payout lands")
		_, innerErr = s.lock.CancelAndRefund(requestcontext.WithCaller(ctx, attacker))
		return nil
	})))
	s.Require().NoError(s.bank.Mint(s.at(owner, s.t0, 0), attacker, big.NewInt(1000)))
	s.buy(attacker, s.t0)

	refund, err := s.lock.CancelAndRefund(s.at(attacker, s.t0, 0))
	s.Require().NoError(err)
	s.Equal(int64(900), refund.Int64())
	s.Equal(1, calls)
	s.ErrorIs(innerErr, models.ErrNoSuchKey)
	s.Equal(int64(900), s.native(attacker))
	s.Equal(int64(100), s.lock.Balance(s.at(owner, s.t0, 0)).Int64())
}

func (s *LockSuite) TestRefundRejectedByRecipient() {
	picky := domain.MustParseAddress("0x00000000000000000000000000000000000000ef")
	s.Require().NoError(s.accounts.Register(picky, paymentReceiverFunc(func(context.Context, domain.Address, *big.Int) error {
		return errors.New("no thanks")
	})))
	s.Require().NoError(s.bank.Mint(s.at(owner, s.t0, 0), picky, big.NewInt(1000)))
	s.buy(picky, s.t0)

	_, err := s.lock.CancelAndRefund(s.at(picky, s.t0, 0))
	s.Require().Error(err)
	s.True(s.lock.HasValidKey(s.at(picky, s.t0, 0), picky), "failed payout restores the key")
	s.Equal(int64(1000), s.lock.Balance(s.at(owner, s.t0, 0)).Int64())
	s.Empty(s.store.ByKind(events.KindCancelKey))
}
