// Package archive keeps the tombstone snapshot of every decommissioned pool.
// Snapshots are stored CBOR-encoded so archived pools stay readable by
// other services without sharing Go types.
package archive

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
)

// Store persists tombstones.
type Store interface {
	Put(ctx context.Context, snap models.Snapshot) error
	// Get returns sentinel.ErrNotFound when addr was never archived.
	Get(ctx context.Context, addr domain.Address) (models.Snapshot, error)
	List(ctx context.Context) ([]domain.Address, error)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		Time:          cbor.TimeRFC3339Nano,
		BigIntConvert: cbor.BigIntConvertShortest,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("archive: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("archive: cbor decoder: %v", err))
	}
}

// Encode serializes a snapshot.
func Encode(snap models.Snapshot) ([]byte, error) {
	b, err := encMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", snap.Address.Hex(), err)
	}
	return b, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(b []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := decMode.Unmarshal(b, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
