package lock

import (
	"math/big"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

func (s *LockSuite) hundredPool() {
	s.lock = s.newLock(models.Config{
		Name:               "Hundred",
		KeyPrice:           big.NewInt(100),
		MaxNumberOfKeys:    50,
		ExpirationDuration: 30 * day,
	})
}

func (s *LockSuite) TestScenarioPurchaseThenCancel() {
	s.hundredPool()

	_, err := s.lock.Purchase(s.at(alice, s.t0, 100), alice, domain.ZeroAddress)
	s.Require().NoError(err)
	s.Equal(s.t0.Add(30*day), s.lock.KeyExpirationTimestampFor(s.at(alice, s.t0, 0), alice))
	s.Equal(uint64(1), s.lock.TotalSupply(s.at(alice, s.t0, 0)))

	refund, err := s.lock.CancelAndRefund(s.at(alice, s.t0, 0))
	s.Require().NoError(err)
	s.Equal(int64(90), refund.Int64())
}

func (s *LockSuite) TestScenarioTransferHalfwayWithFee() {
	s.hundredPool()
	id, err := s.lock.Purchase(s.at(alice, s.t0, 100), alice, domain.ZeroAddress)
	s.Require().NoError(err)
	s.Require().NoError(s.lock.UpdateTransferFee(s.at(owner, s.t0, 0), 10, 100))

	half := s.t0.Add(15 * day)
	s.Equal(int64(5), s.lock.TransferFee(s.at(alice, half, 0), alice).Int64())
	s.Require().NoError(s.lock.TransferFrom(s.at(alice, half, 5), alice, bob, id))

	exp := s.lock.KeyExpirationTimestampFor(s.at(bob, half, 0), bob)
	s.Equal(15*day, exp.Sub(half))
}

func (s *LockSuite) TestScenarioSecondGrantMustExtend() {
	exp := s.t0.Add(10 * day)
	s.Require().NoError(s.lock.Grant(s.at(owner, s.t0, 0), alice, exp))
	s.ErrorIs(s.lock.Grant(s.at(owner, s.t0, 0), alice, exp), models.ErrAlreadyOwnsKey)
	s.ErrorIs(s.lock.Grant(s.at(owner, s.t0, 0), alice, exp.Add(-day)), models.ErrAlreadyOwnsKey)
}

func (s *LockSuite) TestScenarioLastPageIsClamped() {
	holders := []domain.Address{
		alice, bob, carol, dave,
		domain.MustParseAddress("0x00000000000000000000000000000000000000e5"),
	}
	s.Require().NoError(s.lock.GrantKeys(s.at(owner, s.t0, 0), holders, s.t0.Add(day)))

	page, err := s.lock.OwnersByPage(s.at(owner, s.t0, 0), 1, 3)
	s.Require().NoError(err)
	s.Equal(holders[3:], page)
}
