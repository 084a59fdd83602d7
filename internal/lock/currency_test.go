package lock

import (
	"errors"
	"math/big"

	"go.uber.org/mock/gomock"

	"keyledger/internal/lock/models"
	"keyledger/internal/lock/ports/mocks"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
)

var tokenAddr = domain.MustParseAddress("0x00000000000000000000000000000000000000d7")

type bigMatcher struct{ want *big.Int }

func bigEq(n int64) gomock.Matcher { return bigMatcher{want: big.NewInt(n)} }

func (m bigMatcher) Matches(x any) bool {
	v, ok := x.(*big.Int)
	return ok && v != nil && v.Cmp(m.want) == 0
}

func (m bigMatcher) String() string { return "is " + m.want.String() }

func (s *LockSuite) tokenLock(ctrl *gomock.Controller) (*Lock, *mocks.MockTokenLedger) {
	token := mocks.NewMockTokenLedger(ctrl)
	token.EXPECT().TotalSupply(gomock.Any()).Return(big.NewInt(1_000_000))
	l := s.newLock(models.Config{
		Currency:           tokenAddr,
		KeyPrice:           big.NewInt(1000),
		MaxNumberOfKeys:    10,
		ExpirationDuration: 30 * day,
	}, WithTokenLedger(token))
	return l, token
}

func (s *LockSuite) TestTokenCurrency() {
	s.Run("empty token is rejected", func() {
		ctrl := gomock.NewController(s.T())
		token := mocks.NewMockTokenLedger(ctrl)
		token.EXPECT().TotalSupply(gomock.Any()).Return(new(big.Int))

		cfg := models.Config{Currency: tokenAddr, KeyPrice: big.NewInt(1), ExpirationDuration: day}
		_, err := New(s.at(owner, s.t0, 0), poolAddr, owner, cfg, s.coord, s.registry, s.bank, WithTokenLedger(token))
		s.ErrorIs(err, models.ErrInvalidCurrency)
	})

	s.Run("purchase pulls the exact price with the buyer's allowance", func() {
		ctrl := gomock.NewController(s.T())
		l, token := s.tokenLock(ctrl)
		gomock.InOrder(
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(0)),
			token.EXPECT().TransferFrom(gomock.Any(), alice, poolAddr, bigEq(1000)).Return(nil),
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(1000)),
		)

		id, err := l.Purchase(s.at(alice, s.t0, 0), alice, domain.ZeroAddress)
		s.Require().NoError(err)
		s.Equal(uint64(1), id)
	})

	s.Run("short delivery fails verification", func() {
		ctrl := gomock.NewController(s.T())
		l, token := s.tokenLock(ctrl)
		gomock.InOrder(
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(0)),
			token.EXPECT().TransferFrom(gomock.Any(), alice, poolAddr, bigEq(1000)).Return(nil),
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(990)),
		)

		_, err := l.Purchase(s.at(alice, s.t0, 0), alice, domain.ZeroAddress)
		s.Require().ErrorIs(err, models.ErrPaymentVerification)
		s.False(l.HasValidKey(s.at(alice, s.t0, 0), alice))
	})

	s.Run("failed pull is insufficient payment", func() {
		ctrl := gomock.NewController(s.T())
		l, token := s.tokenLock(ctrl)
		token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(0))
		token.EXPECT().TransferFrom(gomock.Any(), alice, poolAddr, bigEq(1000)).Return(errors.New("allowance too low"))

		_, err := l.Purchase(s.at(alice, s.t0, 0), alice, domain.ZeroAddress)
		s.Require().ErrorIs(err, models.ErrInsufficientPayment)
		s.True(dErrors.HasCode(err, dErrors.CodePaymentRequired))
	})

	s.Run("native value is not accepted by a token pool", func() {
		ctrl := gomock.NewController(s.T())
		l, _ := s.tokenLock(ctrl)

		_, err := l.Purchase(s.at(alice, s.t0, 1000), alice, domain.ZeroAddress)
		s.ErrorIs(err, models.ErrPaymentNotAccepted)
	})

	s.Run("refund is paid in the token", func() {
		ctrl := gomock.NewController(s.T())
		l, token := s.tokenLock(ctrl)
		token.EXPECT().TransferFrom(gomock.Any(), alice, poolAddr, bigEq(1000)).Return(nil)
		token.EXPECT().Transfer(gomock.Any(), alice, bigEq(900)).Return(nil)
		gomock.InOrder(
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(0)),
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(1000)),
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(1000)),
			token.EXPECT().BalanceOf(gomock.Any(), poolAddr).Return(big.NewInt(100)),
		)

		_, err := l.Purchase(s.at(alice, s.t0, 0), alice, domain.ZeroAddress)
		s.Require().NoError(err)
		refund, err := l.CancelAndRefund(s.at(alice, s.t0, 0))
		s.Require().NoError(err)
		s.Equal(int64(900), refund.Int64())
	})
}

func (s *LockSuite) TestRegistryDiscount() {
	s.Run("discount lowers the price and is reported", func() {
		ctrl := gomock.NewController(s.T())
		registry := mocks.NewMockRegistry(ctrl)
		l, err := New(s.at(owner, s.t0, 0), poolAddr, owner, models.Config{
			KeyPrice: big.NewInt(1000), MaxNumberOfKeys: 5, ExpirationDuration: day,
		}, s.coord, registry, s.bank)
		s.Require().NoError(err)

		registry.EXPECT().ComputeAvailableDiscountFor(gomock.Any(), alice, bigEq(1000)).Return(big.NewInt(300), big.NewInt(7), nil)
		registry.EXPECT().RecordConsumedDiscount(gomock.Any(), bigEq(300), bigEq(7)).Return(nil)
		registry.EXPECT().RecordKeyPurchase(gomock.Any(), bigEq(700), domain.ZeroAddress).Return(nil)

		_, err = l.Purchase(s.at(alice, s.t0, 700), alice, domain.ZeroAddress)
		s.Require().NoError(err)
		s.Equal(int64(999_300), s.native(alice))
	})

	s.Run("registry failure aborts the purchase", func() {
		ctrl := gomock.NewController(s.T())
		registry := mocks.NewMockRegistry(ctrl)
		l, err := New(s.at(owner, s.t0, 0), poolAddr, owner, models.Config{
			KeyPrice: big.NewInt(1000), MaxNumberOfKeys: 5, ExpirationDuration: day,
		}, s.coord, registry, s.bank)
		s.Require().NoError(err)

		registry.EXPECT().ComputeAvailableDiscountFor(gomock.Any(), bob, gomock.Any()).Return(nil, nil, errors.New("registry offline"))

		_, err = l.Purchase(s.at(bob, s.t0, 1000), bob, domain.ZeroAddress)
		s.Require().Error(err)
		s.Equal(int64(1_000_000), s.native(bob))
		s.False(l.HasValidKey(s.at(bob, s.t0, 0), bob))
	})
}
