package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tsawler/docproc/docerr"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func newErrorBody(err error) *errorBody {
	if err == nil {
		return nil
	}
	return &errorBody{Kind: docerr.KindOf(err).String(), Message: err.Error()}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch docerr.KindOf(err) {
	case docerr.UnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case docerr.DocumentTooLarge:
		return http.StatusRequestEntityTooLarge
	case docerr.InvalidConfig:
		return http.StatusBadRequest
	case docerr.Timeout:
		return http.StatusGatewayTimeout
	case docerr.Io, docerr.OutOfMemory, docerr.Unknown:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: *newErrorBody(err)})
}

// badRequest wraps a request decoding failure as InvalidConfig.
func badRequest(msg string, err error) error {
	if err == nil {
		return docerr.New(docerr.InvalidConfig, msg)
	}
	var de *docerr.Error
	if errors.As(err, &de) {
		return err
	}
	return docerr.Wrap(docerr.InvalidConfig, msg, err)
}
