package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
)

// RequestIDHeader carries the request ID, set by the caller or generated.
const RequestIDHeader = "X-Request-Id"

// maxBodySize limits the JSON request bodies, they only carry paths.
const maxBodySize = 1 << 20

// Operation names, used as the HTTP path `/ipc/<operation>`.
const (
	OpGetStorageRoot  = "get-storage-root"
	OpFetchStatus     = "fetch-status"
	OpListFiles       = "list-files"
	OpUploadFile      = "upload-file"
	OpSelectFile      = "select-file"
	OpGetDesktopPath  = "get-desktop-path"
	OpGetDataPath     = "get-data-path"
	OpCheckFileExists = "check-file-exists"
	OpReadFile        = "read-file"
)

// UIService is the set of operations served to the UI.
type UIService interface {
	StorageRoot(ctx context.Context) (string, error)
	FetchStatus(ctx context.Context) (json.RawMessage, error)
	ListFiles(ctx context.Context, dir string) ([]model.FileEntry, error)
	UploadFile(ctx context.Context, req UploadRequest) (*UploadResult, error)
	SelectFile(ctx context.Context) (*string, error)
	DesktopPath(ctx context.Context) (string, error)
	DataPath(ctx context.Context) (string, error)
	CheckFileExists(ctx context.Context, req CheckRequest) (bool, error)
	ReadFile(ctx context.Context, name string) (string, error)
}

var _ UIService = &Service{}

// PathResponse is the response of the path operations.
type PathResponse struct {
	Path *string `json:"path"`
}

// ListFilesRequest is the list-files request.
type ListFilesRequest struct {
	Directory string `json:"directory"`
}

// ExistsResponse is the check-file-exists response.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ReadFileRequest is the read-file request.
type ReadFileRequest struct {
	FileName string `json:"fileName"`
}

// ReadFileResponse is the read-file response.
type ReadFileResponse struct {
	Content string `json:"content"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	svc    UIService
	logger log.Logger
}

// NewHandler returns the HTTP handler serving every operation as `POST /ipc/<operation>`.
func NewHandler(svc UIService, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.Noop
	}
	h := handler{svc: svc, logger: logger.WithValues(log.Kv{"svc": "gateway.HTTP"})}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ipc/"+OpGetStorageRoot, h.pathOp(svc.StorageRoot))
	mux.HandleFunc("POST /ipc/"+OpFetchStatus, h.fetchStatus)
	mux.HandleFunc("POST /ipc/"+OpListFiles, h.listFiles)
	mux.HandleFunc("POST /ipc/"+OpUploadFile, h.uploadFile)
	mux.HandleFunc("POST /ipc/"+OpSelectFile, h.selectFile)
	mux.HandleFunc("POST /ipc/"+OpGetDesktopPath, h.pathOp(svc.DesktopPath))
	mux.HandleFunc("POST /ipc/"+OpGetDataPath, h.pathOp(svc.DataPath))
	mux.HandleFunc("POST /ipc/"+OpCheckFileExists, h.checkFileExists)
	mux.HandleFunc("POST /ipc/"+OpReadFile, h.readFile)

	return h.withRequestID(mux)
}

func (h handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := h.logger.SetValuesOnCtx(r.Context(), log.Kv{"request-id": id})
		h.logger.WithCtxValues(ctx).Debugf("%s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h handler) pathOp(op func(ctx context.Context) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := op(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, PathResponse{Path: &path})
	}
}

func (h handler) fetchStatus(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.FetchStatus(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, data)
}

func (h handler) listFiles(w http.ResponseWriter, r *http.Request) {
	var req ListFilesRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	files, err := h.svc.ListFiles(r.Context(), req.Directory)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, files)
}

func (h handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svc.UploadFile(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h handler) selectFile(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.SelectFile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, PathResponse{Path: path})
}

func (h handler) checkFileExists(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	exists, err := h.svc.CheckFileExists(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ExistsResponse{Exists: exists})
}

func (h handler) readFile(w http.ResponseWriter, r *http.Request) {
	var req ReadFileRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	content, err := h.svc.ReadFile(r.Context(), req.FileName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ReadFileResponse{Content: content})
}

// decodeBody decodes the JSON body, an empty body is an empty request.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w: %w", model.ErrNotValid, err)
	}
	return nil
}

// StatusCode maps an operation error to its HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotValid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrFileNotFound), errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusCode(err)
	logger := h.logger.WithCtxValues(r.Context())
	if code >= 500 {
		logger.Errorf("%s failed: %v", r.URL.Path, err)
	} else {
		logger.Debugf("%s failed: %v", r.URL.Path, err)
	}
	h.writeJSON(w, r, code, ErrorResponse{Error: err.Error()})
}

func (h handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithCtxValues(r.Context()).Warningf("Could not write response: %v", err)
	}
}
