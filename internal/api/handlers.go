package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziggurat-io/ziggurat/pkg/buildinfo"
	"github.com/ziggurat-io/ziggurat/pkg/errors"
	"github.com/ziggurat-io/ziggurat/pkg/history"
	"github.com/ziggurat-io/ziggurat/pkg/pipeline"
	"github.com/ziggurat-io/ziggurat/pkg/pyramid"
)

// RenderRequest is the body of POST /api/v1/renders.
type RenderRequest struct {
	Params  pyramid.Parameters `json:"params"`
	Dark    *bool              `json:"dark,omitempty"`
	Seed    int64              `json:"seed,omitempty"`
	Refresh bool               `json:"refresh,omitempty"`
}

// RenderResponse describes a stored render without its image payloads.
type RenderResponse struct {
	ID        string             `json:"id"`
	Params    pyramid.Parameters `json:"params"`
	Dark      bool               `json:"dark"`
	Seed      int64              `json:"seed,omitempty"`
	PNGSize   int                `json:"png_size"`
	TileCount int                `json:"tile_count,omitempty"`
	CacheHit  bool               `json:"cache_hit,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	ImageURL  string             `json:"image_url"`
	ThumbURL  string             `json:"thumbnail_url"`
}

func renderResponse(sum history.Summary) RenderResponse {
	return RenderResponse{
		ID:        sum.ID,
		Params:    sum.Params,
		Dark:      sum.Dark,
		Seed:      sum.Seed,
		PNGSize:   sum.PNGSize,
		CreatedAt: sum.CreatedAt,
		ImageURL:  "/api/v1/renders/" + sum.ID + "/image",
		ThumbURL:  "/api/v1/renders/" + sum.ID + "/thumbnail",
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCreateRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	dark := s.DefaultDark
	if req.Dark != nil {
		dark = *req.Dark
	}

	opts := pipeline.Options{
		Params:  req.Params,
		Dark:    dark,
		Seed:    req.Seed,
		Formats: []string{pipeline.FormatPNG, pipeline.FormatThumb},
		Refresh: req.Refresh,
		Logger:  s.Logger,
	}

	result, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec := history.NewRecord(opts.Params, dark, req.Seed,
		result.Artifacts[pipeline.FormatPNG],
		result.Artifacts[pipeline.FormatThumb])
	if err := s.Store.Save(r.Context(), rec); err != nil {
		s.writeError(w, err)
		return
	}

	resp := renderResponse(rec.Summary())
	resp.TileCount = result.Stats.TileCount
	resp.CacheHit = result.CacheInfo.RenderHit
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRenders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	summaries, err := s.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]RenderResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp = append(resp, renderResponse(sum))
	}
	writeJSON(w, http.StatusOK, map[string]any{"renders": resp})
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse(rec.Summary()))
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, func(rec *history.Record) []byte { return rec.PNG })
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, func(rec *history.Record) []byte { return rec.Thumb })
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, payload func(*history.Record) []byte) {
	rec, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	data := payload(rec)
	if len(data) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "record %s has no such artifact", rec.ID))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteRender(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorBody is the JSON shape of all error responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps structured error codes onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeRecordNotFound),
		errors.Is(err, errors.ErrCodeNotFound),
		errors.Is(err, errors.ErrCodeFileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrCodeSurfaceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		s.Logger.Error("request failed", "error", err)
	}

	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
