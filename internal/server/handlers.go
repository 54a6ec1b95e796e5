package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/framecraft/pkg/buildinfo"
	"github.com/matzehuels/framecraft/pkg/cache"
	"github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/fit"
	"github.com/matzehuels/framecraft/pkg/frame"
	"github.com/matzehuels/framecraft/pkg/geom"
	"github.com/matzehuels/framecraft/pkg/preview"
	"github.com/matzehuels/framecraft/pkg/template"
)

// =============================================================================
// Templates
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.opts.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = template.Write(doc, w)
}

// putResponse reports what was stored.
type putResponse struct {
	ID     string `json:"id"`
	Shape  string `json:"shape"`
	Frames int    `json:"frames"`
}

// handlePut accepts any template shape and stores it in the current shape.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, shape, err := s.readTemplate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Store.Put(r.Context(), id, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored template", "id", id, "shape", shape, "frames", len(doc.Frames))
	writeJSON(w, http.StatusOK, putResponse{ID: id, Shape: shape.String(), Frames: len(doc.Frames)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.opts.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := template.Marshal(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	grid := r.URL.Query().Get("grid") == "true"
	key := s.opts.Keyer.PreviewKey(cache.Hash(data), cache.PreviewKeyOpts{Grid: grid, Unit: geom.GridUnit})
	svg, ok, _ := s.opts.Cache.Get(ctx, key)
	if !ok {
		var opts []preview.Option
		if grid {
			opts = append(opts, preview.WithGrid(geom.GridUnit))
		}
		svg = preview.RenderSVG(doc, opts...)
		if err := s.opts.Cache.Set(ctx, key, svg, cache.TTLPreview); err != nil {
			s.logger.Warn("cache preview failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// handleMigrate rewrites a template of any accepted shape in the current
// shape without storing it.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	doc, shape, err := s.readTemplate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Template-Shape", shape.String())
	w.WriteHeader(http.StatusOK)
	_ = template.Write(doc, w)
}

func (s *Server) readTemplate(w http.ResponseWriter, r *http.Request) (*template.Document, template.Shape, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return template.DecodeShape(data)
}

// =============================================================================
// Fit
// =============================================================================

// FitRequest asks where an image lands inside a frame. Either Native or
// Source must be given; Source is probed when Native is empty.
type FitRequest struct {
	Native geom.Size `json:"native"`
	Source string    `json:"source"`
	Frame  geom.Rect `json:"frame"`
	Fit    string    `json:"fit"`
}

// FitResponse is the placement of the scaled image.
type FitResponse struct {
	Native   geom.Size  `json:"native"`
	Fit      frame.Fit  `json:"fit"`
	Scale    float64    `json:"scale"`
	Position geom.Point `json:"position"`
	Size     geom.Size  `json:"size"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode fit request"))
		return
	}

	policy := frame.DefaultFit
	if req.Fit != "" {
		p, err := frame.ParseFit(req.Fit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		policy = p
	}
	if !req.Frame.Size().Valid() {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "frame size must be positive"))
		return
	}

	native := req.Native
	if !native.Valid() {
		var err error
		if native, err = s.probe(r.Context(), req.Source); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	p, err := fit.Place(native, req.Frame, policy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	box := p.Box(native)
	writeJSON(w, http.StatusOK, FitResponse{
		Native:   native,
		Fit:      policy,
		Scale:    p.Scale,
		Position: p.Position,
		Size:     box.Visual(),
	})
}

func (s *Server) probe(ctx context.Context, src string) (geom.Size, error) {
	if src == "" {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "native size or source is required")
	}
	if s.opts.Prober == nil {
		return geom.Size{}, errors.New(errors.ErrCodeUnsupported, "source probing is not enabled")
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	return s.opts.Prober.Probe(ctx, src)
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

// statuses maps error kinds to HTTP statuses. Kinds without an entry are
// server errors.
var statuses = map[errors.Kind]int{
	errors.KindInvalid:     http.StatusBadRequest,
	errors.KindFormat:      http.StatusUnprocessableEntity,
	errors.KindNotFound:    http.StatusNotFound,
	errors.KindNetwork:     http.StatusBadGateway,
	errors.KindTimeout:     http.StatusGatewayTimeout,
	errors.KindUnsupported: http.StatusNotImplemented,
	errors.KindStale:       http.StatusConflict,
}

func statusFor(code errors.Code) int {
	if st, ok := statuses[code.Kind()]; ok {
		return st
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":"INTERNAL_ERROR"}`)
	}
}
