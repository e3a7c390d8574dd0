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
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomoncle/brandhub/database"
	"github.com/tomoncle/brandhub/repository"
	"github.com/uptrace/bun"
)

// Checker reports the health of one dependency.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

type HealthResponse struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health serves the liveness and readiness endpoints.
type Health struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

func NewHealth() *Health {
	return &Health{checkers: make(map[string]Checker), timeout: 5 * time.Second}
}

// Register adds or replaces a named readiness check.
func (h *Health) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Live always answers 200 while the process runs.
func (h *Health) Live(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{Status: StatusUp, Timestamp: time.Now().UTC()})
}

// Ready runs every check and answers 503 if any of them fails.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	resp := HealthResponse{Status: StatusUp, Checks: make(map[string]CheckResult, len(names))}
	for _, name := range names {
		h.mu.RLock()
		check := h.checkers[name]
		h.mu.RUnlock()
		if err := check(ctx); err != nil {
			resp.Checks[name] = CheckResult{Status: StatusDown, Error: err.Error()}
			resp.Status = StatusDown
			continue
		}
		resp.Checks[name] = CheckResult{Status: StatusUp}
	}
	resp.Timestamp = time.Now().UTC()

	status := http.StatusOK
	if resp.Status == StatusDown {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, resp)
}

// poolChecker pings the pool resolve returns at check time.
func poolChecker(resolve func() *bun.DB) Checker {
	return func(ctx context.Context) error {
		db := resolve()
		if db == nil {
			return repository.ErrNoDatabase
		}
		return db.PingContext(ctx)
	}
}

// DatabaseStatusChecker fails when the managed database reports itself
// unhealthy.
func DatabaseStatusChecker(status func(ctx context.Context) *database.HealthStatus) Checker {
	return func(ctx context.Context) error {
		s := status(ctx)
		if s == nil || s.Healthy {
			return nil
		}
		if s.LastError != "" {
			return errors.New(s.LastError)
		}
		return errors.New("database unhealthy")
	}
}
