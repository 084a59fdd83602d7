package lock

import (
	"math/big"
	"time"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

type operatorKey struct {
	owner, operator domain.Address
}

// state is shared by every capability of a Lock. All writes go through the
// ledger journal helpers so a failed operation leaves it untouched.
type state struct {
	owner         domain.Address
	currency      domain.Address
	keyPrice      *big.Int
	maxKeys       uint64
	duration      time.Duration
	sold          uint64
	status        models.Status
	transferFee   models.Ratio
	refundPenalty models.Ratio
	name          string
	symbol        string
	baseURI       string

	keys      map[domain.Address]models.Key
	ownerOf   map[uint64]domain.Address
	owners    []domain.Address
	approved  map[uint64]domain.Address
	operators map[operatorKey]bool
	nonces    map[domain.Address]uint64
}

func newState(owner domain.Address, cfg models.Config) *state {
	return &state{
		owner:         owner,
		currency:      cfg.Currency,
		keyPrice:      new(big.Int).Set(cfg.KeyPrice),
		maxKeys:       cfg.MaxNumberOfKeys,
		duration:      cfg.ExpirationDuration,
		status:        models.StatusAlive,
		transferFee:   models.DefaultTransferFee,
		refundPenalty: models.DefaultRefundPenalty,
		name:          cfg.Name,
		keys:          make(map[domain.Address]models.Key),
		ownerOf:       make(map[uint64]domain.Address),
		approved:      make(map[uint64]domain.Address),
		operators:     make(map[operatorKey]bool),
		nonces:        make(map[domain.Address]uint64),
	}
}
