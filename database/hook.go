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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uptrace/bun"
)

var querySilent atomic.Bool

// SilenceQueryLog mutes every QueryHook, used while migrations run.
func SilenceQueryLog(b bool) {
	querySilent.Store(b)
}

var (
	selectColor = color.New(color.FgGreen)
	insertColor = color.New(color.FgBlue)
	updateColor = color.New(color.FgYellow)
	deleteColor = color.New(color.FgMagenta)
	otherColor  = color.New(color.FgRed)
	tagColor    = color.New(color.FgCyan)
	errColor    = color.New(color.BgRed, color.FgHiWhite)
)

// QueryHook prints every executed statement, colored by operation.
// Non-verbose hooks only print failed statements.
type QueryHook struct {
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(w io.Writer, verbose bool) *QueryHook {
	return &QueryHook{verbose: verbose, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if querySilent.Load() {
		return
	}
	if !h.verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		tagColor.Sprintf("%10s", "[BUN]"),
		fmt.Sprintf("%14s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", operationColor(event.Operation()).Sprint(event.Query),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, "\t", errColor.Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func operationColor(op string) *color.Color {
	switch op {
	case "SELECT":
		return selectColor
	case "INSERT":
		return insertColor
	case "UPDATE":
		return updateColor
	case "DELETE":
		return deleteColor
	default:
		return otherColor
	}
}

var (
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "brandhub_db_query_duration_seconds",
		Help:    "Duration of database statements by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brandhub_db_query_errors_total",
		Help: "Database statements that returned an error, by operation.",
	}, []string{"operation"})

	slowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brandhub_db_slow_queries_total",
		Help: "Database statements slower than the configured threshold.",
	})
)

// metricsHook records statement latency and logs statements slower than
// threshold. A zero threshold disables the slow query log.
type metricsHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*metricsHook)(nil)

func newMetricsHook(threshold time.Duration, logger Logger) *metricsHook {
	return &metricsHook{threshold: threshold, logger: logger}
}

func (h *metricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *metricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := event.Operation()
	elapsed := time.Since(event.StartTime)
	queryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		queryErrors.WithLabelValues(op).Inc()
	}
	if h.threshold > 0 && elapsed > h.threshold {
		slowQueries.Inc()
		h.logger.Warn("Slow query", "duration", elapsed, "operation", op, "query", event.Query)
	}
}
