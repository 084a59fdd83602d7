package adapters

import (
	"keyledger/internal/asset"
	lockports "keyledger/internal/lock/ports"
	"keyledger/internal/registry/ports"
	"keyledger/pkg/domain"
)

// AssetAdapter is an in-process adapter that implements ports.TokenDirectory
// over the asset directory.
type AssetAdapter struct {
	directory *asset.Directory
}

// NewAssetAdapter creates a new in-process token directory adapter.
func NewAssetAdapter(directory *asset.Directory) ports.TokenDirectory {
	return &AssetAdapter{directory: directory}
}

// Token looks up a registered token ledger by address.
func (a *AssetAdapter) Token(addr domain.Address) (lockports.TokenLedger, bool) {
	t, ok := a.directory.Token(addr)
	if !ok {
		return nil, false
	}
	return t, true
}
