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
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalManager Manager
	globalConfig  *Config
)

// InitDB opens the process-wide database described by cfg. Calling it again
// replaces the previous database, which is closed first.
func InitDB(cfg *Config) (*bun.DB, error) {
	m, err := Open(context.Background(), cfg, GetLogger())
	if err != nil {
		return nil, err
	}

	globalMu.Lock()
	previous := globalManager
	globalManager, globalConfig = m, cfg
	globalMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	GetLogger().Info("Database initialization completed")
	return m.DB(), nil
}

func current() Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// GetDB returns the process-wide database, or nil before InitDB.
func GetDB() *bun.DB {
	if m := current(); m != nil {
		return m.DB()
	}
	return nil
}

// GetSQLDB returns the pool behind GetDB, or nil before InitDB.
func GetSQLDB() *sql.DB {
	if m := current(); m != nil {
		return m.SQLDB()
	}
	return nil
}

func CloseDB() error {
	globalMu.Lock()
	m := globalManager
	globalManager, globalConfig = nil, nil
	globalMu.Unlock()
	if m == nil {
		return nil
	}
	return m.Close()
}

// GetHealthStatus pings the process-wide database.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if m := current(); m != nil {
		return m.HealthCheck(ctx)
	}
	return &HealthStatus{LastError: "database not initialized", LastCheckTime: time.Now()}
}

// RunMigrations migrates the process-wide database with the configuration
// it was opened with.
func RunMigrations(ctx context.Context) error {
	globalMu.RLock()
	m, cfg := globalManager, globalConfig
	globalMu.RUnlock()
	if m == nil {
		return fmt.Errorf("database not initialized")
	}
	return m.RunMigrations(ctx, cfg)
}
