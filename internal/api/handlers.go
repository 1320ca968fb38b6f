package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopstats/internal/compare"
	"github.com/cory-johannsen/hoopstats/internal/observability"
	"github.com/cory-johannsen/hoopstats/internal/source"
)

// Comparer runs one comparison.
type Comparer interface {
	Compare(ctx context.Context, req compare.Request) (compare.Result, error)
}

// HealthCheck probes one backend.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// healthTimeout bounds each backend probe.
const healthTimeout = 2 * time.Second

// Handler implements the HTTP endpoints.
type Handler struct {
	comparator Comparer
	records    compare.RecordSource
	searcher   source.Searcher
	checks     []HealthCheck
	logger     *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: comparator, records, searcher and logger must be non-nil.
func NewHandler(comparator Comparer, records compare.RecordSource, searcher source.Searcher, logger *zap.Logger, checks ...HealthCheck) *Handler {
	return &Handler{
		comparator: comparator,
		records:    records,
		searcher:   searcher,
		checks:     checks,
		logger:     logger,
	}
}

// HealthResponse reports overall and per-backend status.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health handles GET /health. Any failing backend yields 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := c.Check(ctx)
		cancel()
		if err != nil {
			resp.Checks[c.Name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.Name] = "ok"
	}
	respondJSON(w, h.logger, status, resp)
}

// PlayerStats handles GET /player-stats/{player_id}.
func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	id, err := parsePlayerID("player_id", chi.URLParam(r, "player_id"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	rec, err := h.records.PlayerStats(r.Context(), id)
	if err == nil && rec == nil {
		err = fmt.Errorf("player %d: %w", id, compare.ErrPlayerNotFound)
	}
	if err != nil {
		h.logger.Debug("player stats unavailable",
			zap.String("request_id", observability.RequestID(r.Context())),
			zap.Int64("player_id", id),
			zap.Error(err),
		)
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, rec)
}

// Compare handles GET /compare with query parameters mode_type, p1_id, p2_id
// and optionally season_name, season_type and basis.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	req, err := parseCompareRequest(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := h.comparator.Compare(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, res)
}

// SearchPlayers handles GET /search-player/{name}. A '+' in name stands for
// a space.
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if strings.TrimSpace(strings.ReplaceAll(name, "+", " ")) == "" {
		respondError(w, h.logger, http.StatusBadRequest, codeBadRequest, "name must not be empty")
		return
	}

	players, err := h.searcher.SearchPlayers(r.Context(), name)
	if err != nil {
		h.logger.Warn("search failed", zap.String("name", name), zap.Error(err))
		respondError(w, h.logger, http.StatusBadGateway, codeInternal, "player search unavailable")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, players)
}

func parseCompareRequest(q url.Values) (compare.Request, error) {
	p1, err := parsePlayerID("p1_id", q.Get("p1_id"))
	if err != nil {
		return compare.Request{}, err
	}
	p2, err := parsePlayerID("p2_id", q.Get("p2_id"))
	if err != nil {
		return compare.Request{}, err
	}
	mode, err := compare.ParseMode(q.Get("mode_type"), q.Get("season_name"))
	if err != nil {
		return compare.Request{}, err
	}
	seasonType, err := compare.ParseSeasonType(q.Get("season_type"))
	if err != nil {
		return compare.Request{}, err
	}
	basis, err := compare.ParseBasis(q.Get("basis"))
	if err != nil {
		return compare.Request{}, err
	}
	return compare.Request{
		Player1: p1,
		Player2: p2,
		Mode:    mode,
		Options: compare.Options{SeasonType: seasonType, Basis: basis},
	}, nil
}

func parsePlayerID(name, raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}
