package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/JonMunkholm/feedbacks/internal/core"
	"github.com/JonMunkholm/feedbacks/internal/logging"
)

const (
	// multipartOverhead is the body allowance for boundaries and part
	// headers on top of the file size cap.
	multipartOverhead = 1 << 20

	healthPingTimeout = 2 * time.Second
)

type infoResponse struct {
	Info string `json:"info"`
}

type uploadResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type healthResponse struct {
	Status  string                   `json:"status"`
	Uploads core.UploadLimiterStatus `json:"uploads"`
	Error   string                   `json:"error,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{Info: "Go, chi, and Postgres feedback API"})
}

// handleListFeedback serves GET /feedbacks?page=&limit=&search=.
func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := s.service.Limits().Parse(q.Get("page"), q.Get("limit"), q.Get("search"))

	resp, err := s.service.ListFeedback(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUploadCSV serves POST /feedbacks/upload-csv. The file part is
// streamed straight into the import pipeline without buffering the body.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	maxBody := s.cfg.Upload.MaxFileSize + multipartOverhead
	if r.ContentLength > maxBody {
		respondError(w, r, fmt.Errorf("%w: content length %d", core.ErrFileTooLarge, r.ContentLength))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	up, part, err := s.openUpload(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer part.Close()

	// The server read deadline started with the request. Restart it once the
	// body is about to be read so time spent queued for a slot is not charged
	// against the transfer.
	up.SlotAcquired = func() { s.extendReadDeadline(w, r) }

	result, err := s.service.ImportCSV(r.Context(), up)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: result.Message(), Count: result.Count})
}

func (s *Server) extendReadDeadline(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.ReadTimeout <= 0 {
		return
	}
	rc := http.NewResponseController(w)
	err := rc.SetReadDeadline(time.Now().Add(s.cfg.Server.ReadTimeout))
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Warn("extend read deadline", "error", err)
	}
}

// openUpload advances the multipart stream to the first file part in the
// configured form field. Other parts are skipped.
func (s *Server) openUpload(r *http.Request) (core.Upload, *multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return core.Upload{}, nil, fmt.Errorf("%w: %v", core.ErrNoFileUploaded, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return core.Upload{}, nil, core.ErrNoFileUploaded
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return core.Upload{}, nil, err
			}
			return core.Upload{}, nil, fmt.Errorf("%w: %v", core.ErrNoFileUploaded, err)
		}

		if part.FormName() == s.cfg.Upload.FieldName && part.FileName() != "" {
			return core.Upload{
				Reader:      part,
				FileName:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
			}, part, nil
		}
		part.Close()
	}
}

// handleHealth reports whether the store answers and how busy the upload
// limiter is.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Uploads: s.service.UploadLimiter().Status(),
	}

	if p, ok := s.service.Store().(core.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Error("health check failed", "error", err)
			resp.Status = "unavailable"
			resp.Error = "store unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
