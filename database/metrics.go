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
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PoolStatsCollector exports the go_sql_* pool statistics of whatever pool
// pool returns at scrape time, so a pool replaced by a reconnect keeps being
// reported. Nothing is exported while pool returns nil.
type PoolStatsCollector struct {
	dbName string
	pool   func() *sql.DB
	descs  prometheus.Collector
}

var _ prometheus.Collector = (*PoolStatsCollector)(nil)

func NewPoolStatsCollector(dbName string, pool func() *sql.DB) *PoolStatsCollector {
	return &PoolStatsCollector{
		dbName: dbName,
		pool:   pool,
		descs:  collectors.NewDBStatsCollector(nil, dbName),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.descs.Describe(ch)
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if db := c.pool(); db != nil {
		collectors.NewDBStatsCollector(db, c.dbName).Collect(ch)
	}
}
