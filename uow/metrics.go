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

package uow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandhub_uow_flushes_total",
			Help: "Total number of unit of work flushes by result",
		},
		[]string{"result"},
	)

	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandhub_uow_transactions_total",
			Help: "Total number of explicit transactions by outcome",
		},
		[]string{"outcome"},
	)

	flushedRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brandhub_uow_flushed_rows",
			Help:    "Rows affected by a successful flush",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

const (
	resultSuccess = "success"
	resultError   = "error"

	outcomeCommitted  = "committed"
	outcomeRolledBack = "rolled_back"
)
