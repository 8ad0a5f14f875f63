package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/trackviz/pkg/buildinfo"
	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type uploadResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Marks int    `json:"marks"`
}

// handleIndex renders the configured source as the chart page, or the
// error panel when the source cannot be charted.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Formats = []string{pipeline.FormatHTML}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Error("chart failed", "source", opts.SourceLabel(), "err", err)
		page, ferr := pipeline.RenderFailure(err, opts)
		if ferr != nil {
			writeError(w, http.StatusInternalServerError, ferr)
			return
		}
		writeBody(w, failureStatus(err, &opts), pipeline.ContentTypes[pipeline.FormatHTML], page)
		return
	}
	writeBody(w, http.StatusOK, pipeline.ContentTypes[pipeline.FormatHTML], res.Artifacts[pipeline.FormatHTML])
}

// handleArtifact renders the configured source in a static format.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == pipeline.FormatHTML {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, failureStatus(err, &opts), err)
		return
	}
	writeBody(w, http.StatusOK, pipeline.ContentTypes[format], res.Artifacts[format])
}

// handleUpload charts a CSV request body and stores the page under a new id.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusUnprocessableEntity, errors.DataLoad(nil, "request body is empty"))
		return
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Source = ""
	opts.Data = body
	opts.Formats = []string{pipeline.FormatHTML}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if pipeline.IsDataLoad(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	id := uuid.NewString()
	if err := s.runner.Cache.Set(r.Context(), s.runner.Keyer.ChartKey(id), res.Artifacts[pipeline.FormatHTML], s.chartTTL); err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "store chart"))
		return
	}
	s.logger.Info("stored chart", "id", id, "marks", res.Scene.Len(), "bytes", len(body))

	writeJSON(w, http.StatusCreated, uploadResponse{ID: id, URL: "/charts/" + id, Marks: res.Scene.Len()})
}

// handleStored serves an uploaded chart page.
func (s *Server) handleStored(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeNotFound, "chart %q not found", id))
		return
	}

	page, err := cache.Lookup(r.Context(), s.runner.Cache, s.runner.Keyer.ChartKey(id))
	if errors.Is(err, errors.ErrCodeNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeBody(w, http.StatusOK, pipeline.ContentTypes[pipeline.FormatHTML], page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

// requestOptions applies query overrides (ease, max, width, height) to the
// base options.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	opts.Logger = s.logger
	q := r.URL.Query()

	if v := q.Get("ease"); v != "" {
		opts.Ease = v
	}
	for name, dst := range map[string]*int{"max": &opts.MaxRecords, "width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query %s must be a positive integer, got %q", name, v)
		}
		*dst = n
	}
	return opts, nil
}

// failureStatus maps a pipeline error to a status: a remote source that
// cannot be loaded is a bad gateway, anything else is our failure.
func failureStatus(err error, opts *pipeline.Options) int {
	switch {
	case pipeline.IsDataLoad(err) && opts.IsRemote():
		return http.StatusBadGateway
	case errors.Is(err, errors.ErrCodeInvalidInput), errors.Is(err, errors.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}
