package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/export"
	"github.com/JonMunkholm/dataquality/internal/logging"
)

// maxJSONBody caps option and publish request bodies.
const maxJSONBody = 64 << 10

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	check := chi.URLParam(r, "check")
	out, err := s.service.RunCheck(chi.URLParam(r, "id"), check)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"check":  check,
		"result": out,
	})
}

// handleClean applies the posted options and returns the new dataset.
// Unknown keys and non-boolean values are ignored; an empty body applies
// no stages.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	raw := map[string]any{}
	if err := decodeJSON(w, r, &raw); err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := core.ParseOptions(raw)
	d, err := s.service.Clean(withRequestMetadata(r), chi.URLParam(r, "id"), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, d.Summary())
}

// handleExport streams the dataset as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	d, err := s.service.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Buffer so a failed write can still produce a JSON error.
	var buf bytes.Buffer
	if err := export.Write(&buf, d.Table, format); err != nil {
		s.respondError(w, r, fmt.Errorf("export %s: %w", format, err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

// publishRequest names the target table for a publish.
type publishRequest struct {
	Table string `json:"table" validate:"required,pgident"`
}

// publishResponse is returned after a successful publish.
type publishResponse struct {
	DatasetID string `json:"dataset_id"`
	*export.PublishResult
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if !s.publisher.Enabled() {
		s.respondError(w, r, export.ErrPublishDisabled)
		return
	}

	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if details, err := s.validateStruct(req); err != nil {
		s.respondError(w, r, err, details...)
		return
	}

	d, err := s.service.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.publisher.Publish(r.Context(), req.Table, d.Table)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "dataset_id", d.ID).Info("dataset published",
		"table", res.Table,
		"rows", res.Rows,
	)
	render.JSON(w, r, publishResponse{DatasetID: d.ID, PublishResult: res})
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}
