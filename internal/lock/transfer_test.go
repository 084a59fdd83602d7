package lock

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"keyledger/internal/events"
	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

type keyReceiverFunc func(ctx context.Context, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error)

func (f keyReceiverFunc) OnKeyReceived(ctx context.Context, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error) {
	return f(ctx, operator, from, tokenID, data)
}

func (s *LockSuite) TestTransferToNewHolder() {
	id := s.buy(alice, s.t0)
	now := s.t0.Add(10 * day)

	s.Require().NoError(s.lock.TransferFrom(s.at(alice, now, 0), alice, carol, id))

	s.False(s.lock.HasValidKey(s.at(alice, now, 0), alice))
	s.Equal(uint64(0), s.lock.TokenIDFor(s.at(alice, now, 0), alice))
	s.Equal(now, s.lock.KeyExpirationTimestampFor(s.at(alice, now, 0), alice))
	s.Equal(id, s.lock.TokenIDFor(s.at(alice, now, 0), carol))
	s.Equal(s.t0.Add(30*day), s.lock.KeyExpirationTimestampFor(s.at(alice, now, 0), carol))

	holder, err := s.lock.OwnerOf(s.at(alice, now, 0), id)
	s.Require().NoError(err)
	s.Equal(carol, holder)
	s.Equal(2, s.lock.NumberOfOwners(s.at(alice, now, 0)))
	s.Equal(uint64(1), s.lock.TotalSupply(s.at(alice, now, 0)))

	last, ok := s.store.Last()
	s.Require().True(ok)
	s.Equal(events.Transfer{From: alice, To: carol, TokenID: id}, last.Payload)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.KeysTransferred))
}

func (s *LockSuite) TestTransferMergesIntoValidKey() {
	aliceID := s.buy(alice, s.t0)
	bobID := s.buy(bob, s.t0.Add(5*day))
	now := s.t0.Add(10 * day)

	s.Require().NoError(s.lock.TransferFrom(s.at(alice, now, 0), alice, bob, aliceID))

	// bob keeps his token-id and gains alice's 20 remaining days.
	s.Equal(bobID, s.lock.TokenIDFor(s.at(bob, now, 0), bob))
	s.Equal(s.t0.Add(55*day), s.lock.KeyExpirationTimestampFor(s.at(bob, now, 0), bob))

	_, err := s.lock.OwnerOf(s.at(bob, now, 0), aliceID)
	s.ErrorIs(err, models.ErrNoSuchKey, "merged token-id is retired")
	holder, err := s.lock.OwnerOf(s.at(bob, now, 0), bobID)
	s.Require().NoError(err)
	s.Equal(bob, holder)
	s.Equal(2, s.lock.NumberOfOwners(s.at(bob, now, 0)))
}

func (s *LockSuite) TestTransferFee() {
	id := s.buy(alice, s.t0)
	s.Require().NoError(s.lock.UpdateTransferFee(s.at(owner, s.t0, 0), 5, 100))

	s.Equal(int64(50), s.lock.TransferFee(s.at(alice, s.t0, 0), alice).Int64())
	half := s.t0.Add(15 * day)
	s.Equal(int64(25), s.lock.TransferFee(s.at(alice, half, 0), alice).Int64())
	s.Zero(s.lock.TransferFee(s.at(alice, half, 0), bob).Sign())

	s.Run("fee must be attached", func() {
		err := s.lock.TransferFrom(s.at(alice, half, 10), alice, bob, id)
		s.Require().ErrorIs(err, models.ErrInsufficientPayment)
		s.True(s.lock.HasValidKey(s.at(alice, half, 0), alice))
		s.Equal(int64(999_000), s.native(alice))
	})

	s.Run("paid transfer succeeds", func() {
		s.Require().NoError(s.lock.TransferFrom(s.at(alice, half, 25), alice, bob, id))
		s.Equal(int64(1025), s.lock.Balance(s.at(alice, half, 0)).Int64())
		s.Equal(float64(25), testutil.ToFloat64(s.metrics.FeesCharged))
	})

	s.Run("zero denominator is rejected", func() {
		err := s.lock.UpdateTransferFee(s.at(owner, s.t0, 0), 1, 0)
		s.ErrorIs(err, models.ErrInvalidRatio)
		s.Equal(models.Ratio{Numerator: 5, Denominator: 100}, s.lock.TransferFeeRatio(s.at(owner, s.t0, 0)))
	})
}

func (s *LockSuite) TestTransferFeeGrowsWithRemainingTime() {
	s.buy(alice, s.t0)
	s.buy(alice, s.t0)
	s.Require().NoError(s.lock.UpdateTransferFee(s.at(owner, s.t0, 0), 5, 100))

	ceiling := big.NewInt(1000 * 5 / 100)
	expires := s.t0.Add(60 * day)
	prev := new(big.Int)
	for _, remaining := range []time.Duration{0, time.Second, time.Hour, day, 7 * day, 15 * day, 29 * day, 30 * day, 45 * day, 60 * day} {
		fee := s.lock.TransferFee(s.at(alice, expires.Add(-remaining), 0), alice)
		s.True(fee.Cmp(prev) >= 0, "fee dropped at %s remaining", remaining)
		s.True(fee.Cmp(ceiling) <= 0, "fee %s above ceiling at %s remaining", fee, remaining)
		if remaining >= 30*day {
			s.Zero(fee.Cmp(ceiling), "a full duration pays the whole fee")
		}
		prev = fee
	}
}

func (s *LockSuite) TestTransferMergeBeyondDurationRange() {
	far := s.t0.AddDate(300, 0, 0)
	s.Require().NoError(s.lock.GrantKeys(s.at(owner, s.t0, 0), []domain.Address{alice}, far))
	s.buy(bob, s.t0)
	id := s.lock.TokenIDFor(s.at(alice, s.t0, 0), alice)

	fee := s.lock.TransferFee(s.at(alice, s.t0, 0), alice)
	s.Require().NoError(s.lock.TransferFrom(s.at(alice, s.t0, fee.Int64()), alice, bob, id))

	merged := s.lock.KeyExpirationTimestampFor(s.at(bob, s.t0, 0), bob)
	s.Equal(s.t0.Add(30*day).Unix()+far.Unix()-s.t0.Unix(), merged.Unix())
	s.True(merged.After(far))
	s.True(s.lock.HasValidKey(s.at(bob, far, 0), bob))
}

func (s *LockSuite) TestTransferPreconditions() {
	id := s.buy(alice, s.t0)
	s.buy(bob, s.t0)

	tests := []struct {
		name    string
		caller  domain.Address
		from    domain.Address
		to      domain.Address
		tokenID uint64
		want    error
	}{
		{name: "stranger cannot move the key", caller: carol, from: alice, to: carol, tokenID: id, want: models.ErrUnauthorized},
		{name: "token-id must match the sender's key", caller: alice, from: alice, to: carol, tokenID: 2, want: models.ErrNoSuchKey},
		{name: "token-id zero never exists", caller: carol, from: carol, to: dave, tokenID: 0, want: models.ErrNoSuchKey},
		{name: "zero recipient", caller: alice, from: alice, to: domain.ZeroAddress, tokenID: id, want: models.ErrInvalidAddress},
		{name: "self transfer", caller: alice, from: alice, to: alice, tokenID: id, want: models.ErrInvalidAddress},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.lock.TransferFrom(s.at(tt.caller, s.t0, 0), tt.from, tt.to, tt.tokenID)
			s.ErrorIs(err, tt.want)
		})
	}

	s.Run("expired key cannot move", func() {
		late := s.t0.Add(31 * day)
		s.ErrorIs(s.lock.TransferFrom(s.at(alice, late, 0), alice, carol, id), models.ErrNoSuchKey)
	})
}

func (s *LockSuite) TestApprovals() {
	id := s.buy(alice, s.t0)

	s.Run("self approval is rejected", func() {
		s.ErrorIs(s.lock.Approve(s.at(alice, s.t0, 0), alice, id), models.ErrApproveSelf)
		s.ErrorIs(s.lock.SetApprovalForAll(s.at(alice, s.t0, 0), alice, true), models.ErrApproveSelf)
	})

	s.Run("only a manager may approve", func() {
		s.ErrorIs(s.lock.Approve(s.at(bob, s.t0, 0), bob, id), models.ErrApproveSelf)
		s.ErrorIs(s.lock.Approve(s.at(bob, s.t0, 0), carol, id), models.ErrUnauthorized)
		s.ErrorIs(s.lock.Approve(s.at(alice, s.t0, 0), bob, 99), models.ErrNoSuchKey)
	})

	s.Run("approved address transfers once and the approval clears", func() {
		s.Require().NoError(s.lock.Approve(s.at(alice, s.t0, 0), bob, id))
		approved, err := s.lock.GetApproved(s.at(alice, s.t0, 0), id)
		s.Require().NoError(err)
		s.Equal(bob, approved)

		s.Require().NoError(s.lock.TransferFrom(s.at(bob, s.t0, 0), alice, carol, id))

		approved, err = s.lock.GetApproved(s.at(alice, s.t0, 0), id)
		s.Require().NoError(err)
		s.Equal(domain.ZeroAddress, approved)
		s.ErrorIs(s.lock.TransferFrom(s.at(bob, s.t0, 0), carol, dave, id), models.ErrUnauthorized)
	})

	s.Run("operators manage every key of the holder", func() {
		s.Require().NoError(s.lock.SetApprovalForAll(s.at(carol, s.t0, 0), dave, true))
		s.True(s.lock.IsApprovedForAll(s.at(carol, s.t0, 0), carol, dave))

		s.Require().NoError(s.lock.Approve(s.at(dave, s.t0, 0), bob, id), "operators may approve")
		s.Require().NoError(s.lock.TransferFrom(s.at(dave, s.t0, 0), carol, alice, id))
		s.Equal(id, s.lock.TokenIDFor(s.at(alice, s.t0, 0), alice))

		s.Require().NoError(s.lock.SetApprovalForAll(s.at(carol, s.t0, 0), dave, false))
		s.False(s.lock.IsApprovedForAll(s.at(carol, s.t0, 0), carol, dave))
	})

	s.Run("approving zero clears", func() {
		s.Require().NoError(s.lock.Approve(s.at(alice, s.t0, 0), bob, id))
		s.Require().NoError(s.lock.Approve(s.at(alice, s.t0, 0), domain.ZeroAddress, id))
		approved, err := s.lock.GetApproved(s.at(alice, s.t0, 0), id)
		s.Require().NoError(err)
		s.Equal(domain.ZeroAddress, approved)
	})
}

func (s *LockSuite) TestSafeTransfer() {
	vault := domain.MustParseAddress("0x00000000000000000000000000000000000000e1")
	rejecter := domain.MustParseAddress("0x00000000000000000000000000000000000000e2")
	inert := domain.MustParseAddress("0x00000000000000000000000000000000000000e3")

	var got struct {
		operator, from domain.Address
		tokenID        uint64
		data           []byte
	}
	s.Require().NoError(s.accounts.Register(vault, keyReceiverFunc(func(_ context.Context, operator, from domain.Address, tokenID uint64, data []byte) ([4]byte, error) {
		got.operator, got.from, got.tokenID, got.data = operator, from, tokenID, data
		return domain.KeyReceivedSelector, nil
	})))
	s.Require().NoError(s.accounts.Register(rejecter, keyReceiverFunc(func(context.Context, domain.Address, domain.Address, uint64, []byte) ([4]byte, error) {
		return [4]byte{}, errors.New("not accepting keys")
	})))
	s.Require().NoError(s.accounts.Register(inert, struct{}{}))

	id := s.buy(alice, s.t0)

	s.Run("rejecting receiver undoes the transfer", func() {
		err := s.lock.SafeTransferFrom(s.at(alice, s.t0, 0), alice, rejecter, id, nil)
		s.Require().ErrorIs(err, models.ErrReceiverRejected)
		s.Equal(id, s.lock.TokenIDFor(s.at(alice, s.t0, 0), alice))
		s.False(s.lock.HasValidKey(s.at(alice, s.t0, 0), rejecter))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.ReceiverRejected))
	})

	s.Run("program without a receiver is rejected", func() {
		err := s.lock.SafeTransferFrom(s.at(alice, s.t0, 0), alice, inert, id, nil)
		s.ErrorIs(err, models.ErrReceiverRejected)
	})

	s.Run("acknowledging receiver takes the key", func() {
		s.Require().NoError(s.lock.SafeTransferFrom(s.at(alice, s.t0, 0), alice, vault, id, []byte("hi")))
		s.Equal(id, s.lock.TokenIDFor(s.at(alice, s.t0, 0), vault))
		s.Equal(alice, got.operator)
		s.Equal(alice, got.from)
		s.Equal(id, got.tokenID)
		s.Equal([]byte("hi"), got.data)
	})

	s.Run("plain accounts need no acknowledgement", func() {
		bobID := s.buy(bob, s.t0)
		s.Require().NoError(s.lock.SafeTransferFrom(s.at(bob, s.t0, 0), bob, dave, bobID, nil))
		s.True(s.lock.HasValidKey(s.at(bob, s.t0, 0), dave))
	})
}

func (s *LockSuite) TestTransferFeeUsesKeyPrice() {
	s.buy(alice, s.t0)
	s.Require().NoError(s.lock.UpdateTransferFee(s.at(owner, s.t0, 0), 1, 10))
	s.Require().NoError(s.lock.UpdateKeyPrice(s.at(owner, s.t0, 0), big.NewInt(3000)))

	s.Equal(int64(300), s.lock.TransferFee(s.at(alice, s.t0, 0), alice).Int64())
}
