package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	lockmodels "keyledger/internal/lock/models"
	"keyledger/internal/registry/models"
	"keyledger/pkg/domain"
	dErrors "keyledger/pkg/domain-errors"
	"keyledger/pkg/platform/httputil"
	"keyledger/pkg/requestcontext"
)

// PoolReader is the read side of the registry.
type PoolReader interface {
	Address() domain.Address
	Pools(ctx context.Context) []domain.Address
	Record(ctx context.Context, addr domain.Address) (models.PoolRecord, bool)
	Totals(ctx context.Context) models.Totals
	Defaults(ctx context.Context) models.Defaults
	PoolSnapshot(ctx context.Context, addr domain.Address, withOwners bool) (lockmodels.Snapshot, error)
	HolderKey(ctx context.Context, addr, holder domain.Address) (models.KeyView, error)
	ArchivedPool(ctx context.Context, addr domain.Address) (lockmodels.Snapshot, error)
}

// PoolHandler serves registry and pool reads.
type PoolHandler struct {
	reader PoolReader
	logger *slog.Logger
}

func NewPoolHandler(reader PoolReader, logger *slog.Logger) *PoolHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PoolHandler{reader: reader, logger: logger}
}

// Register mounts pool endpoints on the router.
func (h *PoolHandler) Register(r chi.Router) {
	r.Get("/registry", h.handleRegistry)
	r.Get("/pools", h.handleListPools)
	r.Get("/pools/{address}", h.handleGetPool)
	r.Get("/pools/{address}/keys/{holder}", h.handleGetKey)
	r.Get("/pools/{address}/tombstone", h.handleGetTombstone)
}

type registryResponse struct {
	Address   domain.Address  `json:"address"`
	PoolCount int             `json:"pool_count"`
	Defaults  models.Defaults `json:"defaults"`
	Totals    models.Totals   `json:"totals"`
}

type poolResponse struct {
	Pool   lockmodels.Snapshot `json:"pool"`
	Record *models.PoolRecord  `json:"record,omitempty"`
}

func (h *PoolHandler) handleRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, registryResponse{
		Address:   h.reader.Address(),
		PoolCount: len(h.reader.Pools(ctx)),
		Defaults:  h.reader.Defaults(ctx),
		Totals:    h.reader.Totals(ctx),
	})
}

func (h *PoolHandler) handleListPools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addrs := h.reader.Pools(ctx)
	records := make([]models.PoolRecord, 0, len(addrs))
	for _, addr := range addrs {
		if rec, ok := h.reader.Record(ctx, addr); ok {
			records = append(records, rec)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *PoolHandler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, ok := h.address(w, r, "address")
	if !ok {
		return
	}
	snap, err := h.reader.PoolSnapshot(ctx, addr, r.URL.Query().Get("owners") == "true")
	if err != nil {
		h.fail(ctx, w, "pool lookup failed", err, "pool", addr)
		return
	}
	resp := poolResponse{Pool: snap}
	if rec, ok := h.reader.Record(ctx, addr); ok {
		resp.Record = &rec
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *PoolHandler) handleGetKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, ok := h.address(w, r, "address")
	if !ok {
		return
	}
	holder, ok := h.address(w, r, "holder")
	if !ok {
		return
	}
	view, err := h.reader.HolderKey(ctx, addr, holder)
	if err != nil {
		h.fail(ctx, w, "key lookup failed", err, "pool", addr, "holder", holder)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *PoolHandler) handleGetTombstone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, ok := h.address(w, r, "address")
	if !ok {
		return
	}
	snap, err := h.reader.ArchivedPool(ctx, addr)
	if err != nil {
		h.fail(ctx, w, "tombstone lookup failed", err, "pool", addr)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *PoolHandler) address(w http.ResponseWriter, r *http.Request, param string) (domain.Address, bool) {
	addr, err := domain.ParseAddress(chi.URLParam(r, param))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+param))
		return domain.Address{}, false
	}
	return addr, true
}

func (h *PoolHandler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	h.logger.Log(ctx, level, msg, attrs...)
	httputil.WriteError(w, err)
}
