/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/database"
	"github.com/tomoncle/brandhub/repository"
	"github.com/tomoncle/brandhub/service"
)

// Response is the JSON envelope of every reply.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status. Encoding errors are dropped since
// the headers are already sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: RequestIDFromContext(r.Context())},
	})
}

func writeNotFound(w http.ResponseWriter, r *http.Request, what string) {
	writeErrorCode(w, r, http.StatusNotFound, "NOT_FOUND", what+" not found")
}

func writeBadParameter(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorCode(w, r, http.StatusBadRequest, "INVALID_PARAMETER", message)
}

// WriteError maps err to a status code. Validation failures are 400,
// constraint violations reported by the database are 409 and anything else
// is logged and reported as 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *logrus.Logger) {
	requestID := RequestIDFromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := &ErrorResponse{Code: "VALIDATION_ERROR", Message: verr.Error(), RequestID: requestID}
		if fields := verr.Fields(); len(fields) > 0 {
			resp.Fields = fields
			resp.Message = "request validation failed"
		}
		WriteJSON(w, http.StatusBadRequest, Response{Error: resp})
	case errors.Is(err, service.ErrInvalidInput):
		writeErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, repository.ErrNoDatabase):
		writeErrorCode(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "the database is unavailable")
	case database.IsDuplicateKey(err):
		writeErrorCode(w, r, http.StatusConflict, "ALREADY_EXISTS", "resource already exists")
	case database.IsConstraintViolation(err):
		writeErrorCode(w, r, http.StatusConflict, "CONSTRAINT_VIOLATION", "the change violates a database constraint")
	default:
		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("internal error")
		writeErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}

// decodeJSON reads the request body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeErrorCode(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} URL parameter and writes a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeBadParameter(w, r, "id must be a positive integer: "+raw)
		return 0, false
	}
	return id, true
}

// queryInt parses a required integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeBadParameter(w, r, name+" must be a valid integer")
		return 0, false
	}
	return v, true
}

// queryPage reads the optional page and page_size parameters. Missing or
// unparsable values fall back to the defaults of types.PageRequest.
func queryPage(r *http.Request) (page, pageSize int, paged bool) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("page_size") == "" {
		return 0, 0, false
	}
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	return page, pageSize, true
}
