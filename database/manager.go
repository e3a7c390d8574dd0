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
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// MemoryDBName selects a private in-memory SQLite database.
const MemoryDBName = ":memory:"

type openFunc func(cfg *ConnectionConfig) (*sql.DB, *bun.DB, error)

var openers = map[string]openFunc{
	"mysql":      openMySQL,
	"postgres":   openPostgres,
	"postgresql": openPostgres,
	"sqlite":     func(cfg *ConnectionConfig) (*sql.DB, *bun.DB, error) { return OpenSQLite(cfg.DBName) },
	"sqlite3":    func(cfg *ConnectionConfig) (*sql.DB, *bun.DB, error) { return OpenSQLite(cfg.DBName) },
}

// SupportedTypes lists the accepted ConnectionConfig.Type values.
func SupportedTypes() []string {
	types := make([]string, 0, len(openers))
	for t := range openers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func openMySQL(cfg *ConnectionConfig) (*sql.DB, *bun.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.ReadTimeout
	mc.WriteTimeout = cfg.WriteTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, err
	}
	sqlDB := sql.OpenDB(connector)
	return sqlDB, bun.NewDB(sqlDB, mysqldialect.New()), nil
}

func openPostgres(cfg *ConnectionConfig) (*sql.DB, *bun.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: query.Encode(),
	}

	connector, err := pq.NewConnector(dsn.String())
	if err != nil {
		return nil, nil, err
	}
	sqlDB := sql.OpenDB(connector)
	return sqlDB, bun.NewDB(sqlDB, pgdialect.New()), nil
}

// OpenSQLite opens a SQLite database with the driver sqliteshim picks for the
// build target. name is a file name without the ".db" suffix, or MemoryDBName
// for a private in-memory database. In-memory databases are pinned to a single connection because every new
// connection would otherwise see an empty database.
func OpenSQLite(name string) (*sql.DB, *bun.DB, error) {
	dsn := fmt.Sprintf("file:%s.db?_pragma=busy_timeout(5000)", name)
	memory := name == MemoryDBName
	if memory {
		dsn = "file::memory:?cache=private"
	}

	sqlDB, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, nil, err
	}
	if memory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}
	return sqlDB, bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

type manager struct {
	config *ConnectionConfig
	logger Logger

	mu             sync.RWMutex
	db             *bun.DB
	sqlDB          *sql.DB
	status         *HealthStatus
	reconnectTries int
	stopLoop       context.CancelFunc
}

// NewManager returns a Manager for cfg. A nil cfg means
// DefaultConnectionConfig and a nil logger means the package logger.
func NewManager(cfg *ConnectionConfig, logger Logger) Manager {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &manager{config: cfg, logger: logger, status: &HealthStatus{}}
}

// Connect opens and pings the pool, then starts the background health check
// when HealthCheckInterval is set. Connecting twice is a no-op.
func (m *manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return nil
	}
	if err := m.openLocked(ctx); err != nil {
		return err
	}

	if m.config.HealthCheckInterval > 0 {
		loopCtx, cancel := context.WithCancel(context.Background())
		m.stopLoop = cancel
		go m.healthLoop(loopCtx)
	}
	m.logger.Info("Database connected", "type", m.config.Type, "host", m.config.Host, "dbname", m.config.DBName)
	return nil
}

func (m *manager) openLocked(ctx context.Context) error {
	open, ok := openers[m.config.Type]
	if !ok {
		return fmt.Errorf("unsupported database type: %s, supported types: %v", m.config.Type, SupportedTypes())
	}
	if m.config.ConnectTimeout <= 0 {
		m.config.ConnectTimeout = 30 * time.Second
	}

	sqlDB, db, err := open(m.config)
	if err != nil {
		return fmt.Errorf("open %s database: %w", m.config.Type, err)
	}
	if !m.config.inMemory() {
		sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
		sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping %s database: %w", m.config.Type, err)
	}

	// BUNDEBUG=1 logs failed queries, BUNDEBUG=2 logs everything.
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))
	if m.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook(os.Stdout, true))
	}
	db.AddQueryHook(newMetricsHook(m.config.SlowQueryTime, m.logger))
	db.RegisterModel(RegisteredModelInstances()...)

	m.sqlDB, m.db = sqlDB, db
	return nil
}

func (m *manager) closeLocked() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db, m.sqlDB = nil, nil
	return err
}

// Close stops the health check and closes the pool.
func (m *manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopLoop != nil {
		m.stopLoop()
		m.stopLoop = nil
	}
	if err := m.closeLocked(); err != nil {
		m.logger.Error("Failed to close database", "error", err)
		return err
	}
	m.logger.Info("Database closed")
	return nil
}

func (m *manager) Ping(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (m *manager) DB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *manager) SQLDB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sqlDB
}

// HealthCheck pings the store and records the result. The lock is not held
// during the ping.
func (m *manager) HealthCheck(ctx context.Context) *HealthStatus {
	m.mu.RLock()
	db, sqlDB := m.db, m.sqlDB
	m.mu.RUnlock()

	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}
	if db == nil {
		status.LastError = "database not connected"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		status.ResponseTime = time.Since(start)
		if err != nil {
			status.LastError = err.Error()
		} else {
			status.Healthy, status.Connected = true, true
		}
		stats := sqlDB.Stats()
		status.InUseConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *manager) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(m.config.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if status := m.HealthCheck(ctx); !status.Healthy && m.config.EnableReconnect {
				m.reconnect(ctx)
			}
		}
	}
}

// reconnect replaces the pool, giving up after MaxReconnectTries failed
// attempts in a row.
func (m *manager) reconnect(ctx context.Context) {
	m.mu.Lock()
	if m.reconnectTries >= m.config.MaxReconnectTries {
		m.mu.Unlock()
		m.logger.Error("Max reconnect attempts reached", "tries", m.config.MaxReconnectTries)
		return
	}
	m.reconnectTries++
	try := m.reconnectTries
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return
	case <-time.After(m.config.ReconnectInterval):
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if err := m.closeLocked(); err != nil {
		m.logger.Warn("Error closing broken pool", "error", err)
	}
	if err := m.openLocked(ctx); err != nil {
		m.logger.Error("Reconnect failed", "error", err, "try", try)
		return
	}
	m.reconnectTries = 0
	m.logger.Info("Reconnect succeeded", "try", try)
}

func (m *manager) RunMigrations(ctx context.Context, cfg *Config) error {
	db := m.DB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return NewMigrationManager(db, m.logger).WithConfig(cfg).RunMigrations(ctx)
}
