package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/dataquality/internal/core"
)

const (
	// multipartMemory is the part of a form kept in memory before spilling to disk.
	multipartMemory = 32 << 20

	// formOverhead allows for multipart boundaries and headers around the file.
	formOverhead = 64 << 10
)

// healthResponse is returned by /healthz.
type healthResponse struct {
	Status    string                   `json:"status"`
	Datasets  int                      `json:"datasets"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
	Publisher bool                     `json:"publisher"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:    "ok",
		Datasets:  len(s.service.Datasets()),
		Uploads:   s.service.LimiterStatus(),
		Publisher: s.publisher.Enabled(),
	})
}

// handleUpload loads a multipart "file" field into a new dataset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if maxSize := s.cfg.Upload.MaxFileSize.Int64(); maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("parse form: %w", core.ErrFileTooLarge))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	ctx := withRequestMetadata(r)
	d, err := s.service.Load(ctx, filepath.Base(header.Filename), file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, d.Summary())
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := s.service.Datasets()
	out := make([]core.DatasetSummary, len(datasets))
	for i, d := range datasets {
		out[i] = d.Summary()
	}
	render.JSON(w, r, out)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, d.Summary())
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	type checkInfo struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}

	keys := core.CheckKeys()
	out := make([]checkInfo, 0, len(keys))
	for _, key := range keys {
		if c, ok := core.GetCheck(key); ok {
			out = append(out, checkInfo{Key: c.Key, Label: c.Label})
		}
	}
	render.JSON(w, r, out)
}
