package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"buckaroo/internal/log"
	"buckaroo/internal/repository"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a repository error kind to an HTTP status and renders the
// normalized user message. Unclassified errors become a plain 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var re *repository.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case repository.KindValidation:
			status = http.StatusUnprocessableEntity
		case repository.KindNotFound:
			status = http.StatusNotFound
		case repository.KindTimeout:
			status = http.StatusGatewayTimeout
		case repository.KindConnectivity:
			status = http.StatusBadGateway
		case repository.KindServer:
			if re.Status >= 400 {
				status = http.StatusBadGateway
			}
		}
	}

	logger := log.FromContext(ctx)
	if status >= 500 {
		logger.ErrorContext(ctx, "Request failed", log.FieldError, err.Error(), log.FieldStatusCode, status)
	} else {
		logger.WarnContext(ctx, "Request rejected", log.FieldError, err.Error(), log.FieldStatusCode, status)
	}

	writeJSON(w, status, errorResponse{Error: repository.UserMessage(err)})
}

// decodeJSON reads a bounded request body. Malformed JSON is a validation
// failure, not a server one.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return repository.NewError(repository.KindValidation, "request body is not valid JSON", err)
	}
	return nil
}
