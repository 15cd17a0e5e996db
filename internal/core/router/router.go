// Package router decodes aperture requests and serves edges and masks.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/aperture-engine/internal/aperture"
	mylog "github.com/mohammed-shakir/aperture-engine/internal/logger"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

const maxBodyBytes = 1 << 20

// ApertureRequest is the body of both aperture endpoints.
type ApertureRequest struct {
	Rows          []map[string]any `json:"rows"`
	PixelScale    any              `json:"pixel_scale,omitempty"`
	NRoundCorners *int             `json:"n_round_corners,omitempty"`
	NoMask        *bool            `json:"no_mask,omitempty"`
	// Settings override the server settings for this request only.
	Settings map[string]any `json:"settings,omitempty"`
}

type MaskResponse struct {
	Naxis1 int      `json:"naxis1"`
	Naxis2 int      `json:"naxis2"`
	Rows   []string `json:"rows"`
}

// Handler serves aperture lists against a shared settings seed. Every
// request works on its own clone of the seed.
type Handler struct {
	log    *slog.Logger
	seed   *settings.Context
	nRound int
	opts   []aperture.Option
}

func New(log *slog.Logger, seed *settings.Context, nRound int, opts ...aperture.Option) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, seed: seed, nRound: nRound, opts: opts}
}

// ParseApertureRequest decodes and validates the body.
func ParseApertureRequest(r *http.Request) (ApertureRequest, string, error) {
	var warn string
	var req ApertureRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "", fmt.Errorf("invalid json body: %w", err)
	}
	if len(req.Rows) == 0 {
		return req, "", errors.New("missing required field: rows")
	}
	if req.NRoundCorners != nil && *req.NRoundCorners < 3 {
		return req, "", fmt.Errorf("n_round_corners must be at least 3, got %d", *req.NRoundCorners)
	}
	if req.NoMask != nil && *req.NoMask && strings.HasSuffix(r.URL.Path, "/masks") {
		warn = "no_mask ignored on the masks endpoint"
		req.NoMask = nil
	}
	return req, warn, nil
}

func (h *Handler) Edges() http.HandlerFunc { return h.serve(aperture.Edges) }

func (h *Handler) Masks() http.HandlerFunc { return h.serve(aperture.Masks) }

func (h *Handler) serve(which aperture.GridKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := mylog.WithRoute(r.Context(), r.URL.Path)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		req, warn, err := ParseApertureRequest(r)
		if warn != "" {
			h.log.WarnContext(ctx, warn)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		list, err := h.list(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		sys := h.seed.Clone()
		for k, v := range req.Settings {
			sys.Set(k, v)
		}

		g, err := list.FOVGrid(which, sys, nil)
		if err != nil {
			h.log.WarnContext(ctx, "aperture grid failed", "err", err)
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		h.log.InfoContext(ctx, "apertures served",
			"kind", string(which),
			"apertures", list.Len(),
			"duration", time.Since(start))

		if which == aperture.Edges {
			writeJSON(w, http.StatusOK, edgesBody(g))
			return
		}
		writeJSON(w, http.StatusOK, masksBody(g))
	}
}

func (h *Handler) list(req ApertureRequest) (*aperture.List, error) {
	names := map[string]struct{}{}
	for _, row := range req.Rows {
		for k := range row {
			names[k] = struct{}{}
		}
	}
	tbl, err := table.FromRows(slices.Sorted(maps.Keys(names)), req.Rows)
	if err != nil {
		return nil, err
	}

	kwargs := map[string]any{"n_round_corners": h.nRound}
	if req.PixelScale != nil {
		kwargs["pixel_scale"] = req.PixelScale
	}
	if req.NRoundCorners != nil {
		kwargs["n_round_corners"] = *req.NRoundCorners
	}
	if req.NoMask != nil {
		kwargs["no_mask"] = *req.NoMask
	}
	return aperture.NewList(tbl, kwargs, h.opts...)
}

func edgesBody(g aperture.ListGrid) []map[string]any {
	out := make([]map[string]any, 0, len(g.Edges))
	for _, hdr := range g.Edges {
		if hdr == nil {
			continue
		}
		cards := map[string]any{}
		for _, c := range hdr.Cards() {
			cards[c.Key] = c.Value
		}
		out = append(out, cards)
	}
	return out
}

func masksBody(g aperture.ListGrid) map[string]*MaskResponse {
	out := make(map[string]*MaskResponse, len(g.Masks))
	for id, m := range g.Masks {
		if m == nil {
			out[strconv.Itoa(id)] = nil
			continue
		}
		out[strconv.Itoa(id)] = &MaskResponse{Naxis1: m.Width(), Naxis2: m.Height(), Rows: m.Rows()}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
