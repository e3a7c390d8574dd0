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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/brandhub/internal/testdb"
	"github.com/tomoncle/brandhub/repository"
	"github.com/tomoncle/brandhub/service"
	"github.com/tomoncle/brandhub/types"
	"github.com/tomoncle/brandhub/uow"
	"github.com/uptrace/bun"
)

type envelope[T any] struct {
	Data  T              `json:"data"`
	Error *ErrorResponse `json:"error"`
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRouter(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	l := quietLogger()
	db := testdb.OpenSeeded(t)
	opts = append([]Option{
		WithLogger(l),
		WithServiceOptions(service.WithLogger(l)),
		WithUnitOfWorkOptions(uow.WithLogger(l)),
	}, opts...)
	return NewRouter(db, opts...)
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func brandNames(brands []service.BrandResponse) []string {
	names := make([]string, 0, len(brands))
	for _, b := range brands {
		names = append(names, b.Name)
	}
	return names
}

func TestBrandRoutes_Reads(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]service.BrandResponse](t, rec)
	assert.Len(t, all.Data, 10)

	rec = do(t, h, http.MethodGet, "/api/brands/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Toyota", decode[service.BrandResponse](t, rec).Data.Name)

	rec = do(t, h, http.MethodGet, "/api/brands/search?name=BENZ", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Mercedes-Benz"}, brandNames(decode[[]service.BrandResponse](t, rec).Data))

	rec = do(t, h, http.MethodGet, "/api/brands/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]service.BrandResponse](t, rec).Data, 10)

	rec = do(t, h, http.MethodGet, "/api/brands/country/japan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"Toyota", "Honda", "Nissan"}, brandNames(decode[[]service.BrandResponse](t, rec).Data))

	rec = do(t, h, http.MethodGet, "/api/brands/founding-year?start=1900&end=1920", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Ford", "Chevrolet", "BMW"}, brandNames(decode[[]service.BrandResponse](t, rec).Data))
}

func TestBrandRoutes_Page(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/brands?page=3&page_size=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[types.Pagination[service.BrandResponse]](t, rec).Data
	assert.Equal(t, 10, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 2)
}

func TestBrandRoutes_BadRequests(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"absent id", "/api/brands/999", http.StatusNotFound, "NOT_FOUND"},
		{"non numeric id", "/api/brands/abc", http.StatusBadRequest, "INVALID_PARAMETER"},
		{"empty search", "/api/brands/search?name=", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"blank search", "/api/brands/search?name=%20%20", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"start after end", "/api/brands/founding-year?start=1950&end=1900", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"start before 1800", "/api/brands/founding-year?start=1799&end=1900", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"end in the future", "/api/brands/founding-year?start=1900&end=3000", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing start", "/api/brands/founding-year?end=1900", http.StatusBadRequest, "INVALID_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			env := decode[json.RawMessage](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
			assert.Equal(t, env.Error.RequestID, rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestBrandRoutes_CreateUpdateDelete(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/brands", map[string]any{
		"name":              "Kia",
		"country_of_origin": "South Korea",
		"founding_year":     1944,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[service.BrandResponse](t, rec).Data
	assert.Equal(t, int64(11), created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "/api/brands/11", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPut, "/api/brands/11", map[string]any{
		"id":            11,
		"name":          "Kia Motors",
		"founding_year": 1944,
		"active":        false,
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/brands/11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[service.BrandResponse](t, rec).Data
	assert.Equal(t, "Kia Motors", updated.Name)
	assert.Nil(t, updated.CountryOfOrigin)
	assert.False(t, updated.Active)

	rec = do(t, h, http.MethodGet, "/api/brands/active", nil)
	assert.Len(t, decode[[]service.BrandResponse](t, rec).Data, 10)

	rec = do(t, h, http.MethodDelete, "/api/brands/11", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/brands/11", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrandRoutes_WriteErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/brands", map[string]any{"founding_year": 1944})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[json.RawMessage](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "name")

	rec = do(t, h, http.MethodPost, "/api/brands", map[string]any{"name": "Kia", "founding_year": 1944, "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/brands/1", map[string]any{"id": 2, "name": "Toyota", "founding_year": 1937})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/brands/999", map[string]any{"id": 999, "name": "Ghost", "founding_year": 1937})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/brands/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrandRoutes_Import(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/brands/import", []map[string]any{
		{"name": "Fiat", "country_of_origin": "Italy", "founding_year": 1899},
		{"name": "Alfa Romeo", "country_of_origin": "Italy", "founding_year": 1910, "active": false},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]service.BrandResponse](t, rec).Data, 2)

	rec = do(t, h, http.MethodGet, "/api/brands/country/Italy", nil)
	assert.ElementsMatch(t, []string{"Ferrari", "Fiat", "Alfa Romeo"}, brandNames(decode[[]service.BrandResponse](t, rec).Data))

	rec = do(t, h, http.MethodPost, "/api/brands/import", []map[string]any{
		{"name": "Lancia", "founding_year": 1906},
		{"name": "", "founding_year": 1906},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/brands", nil)
	assert.Len(t, decode[[]service.BrandResponse](t, rec).Data, 12)
}

func TestProductRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/products/in-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]service.ProductResponse](t, rec).Data, 3)

	rec = do(t, h, http.MethodGet, "/api/products/price-range?min=2000&max=10000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ranged := decode[[]service.ProductResponse](t, rec).Data
	require.Len(t, ranged, 2)
	assert.Equal(t, "Mouse", ranged[0].Name)
	assert.Equal(t, "Keyboard", ranged[1].Name)

	rec = do(t, h, http.MethodGet, "/api/products/price-range?min=-1&max=10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/products/search?name=key", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]service.ProductResponse](t, rec).Data, 1)

	rec = do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Webcam", "price": 4999, "stock": 0})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	webcam := decode[service.ProductResponse](t, rec).Data
	assert.Equal(t, "/api/products/4", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/api/products/in-stock", nil)
	assert.Len(t, decode[[]service.ProductResponse](t, rec).Data, 3)

	rec = do(t, h, http.MethodPut, "/api/products/4", map[string]any{"id": webcam.ID, "name": "Webcam", "price": 4999, "stock": 7})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/in-stock", nil)
	assert.Len(t, decode[[]service.ProductResponse](t, rec).Data, 4)

	rec = do(t, h, http.MethodPost, "/api/products", map[string]any{"name": "Cable", "price": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/products/4", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/products/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ready HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, StatusUp, ready.Status)
	assert.Equal(t, StatusUp, ready.Checks["database"].Status)

	failing := NewHealth()
	failing.Register("database", func(context.Context) error { return errors.New("connection refused") })
	h = newTestRouter(t, WithHealth(failing))

	rec = do(t, h, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, StatusDown, ready.Status)
	assert.Equal(t, "connection refused", ready.Checks["database"].Error)
}

func TestRouter_ResolvesPoolPerRequest(t *testing.T) {
	var current *bun.DB
	h := newTestRouter(t, WithDBResolver(func() *bun.DB { return current }))

	rec := do(t, h, http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	assert.Equal(t, "UNAVAILABLE", decode[json.RawMessage](t, rec).Error.Code)
	rec = do(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	current = testdb.Open(t)
	rec = do(t, h, http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[[]service.BrandResponse](t, rec).Data)

	current = testdb.OpenSeeded(t)
	rec = do(t, h, http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]service.BrandResponse](t, rec).Data, 10)
	rec = do(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/api/brands/active", nil)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "brandhub_http_requests_total"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"duplicate key", &pq.Error{Code: "23505"}, http.StatusConflict, "ALREADY_EXISTS"},
		{"not null", &pq.Error{Code: "23502"}, http.StatusConflict, "CONSTRAINT_VIOLATION"},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"no database", fmt.Errorf("list brands: %w", repository.ErrNoDatabase), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, quietLogger())
			assert.Equal(t, tt.status, rec.Code)
			env := decode[json.RawMessage](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	panicking := Recovery(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
