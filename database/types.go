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
	"time"

	"github.com/uptrace/bun"
)

// Manager owns one connection pool. It connects, reports health, keeps the
// pool alive and runs the schema migrations.
type Manager interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	DB() *bun.DB
	SQLDB() *sql.DB
	RunMigrations(ctx context.Context, cfg *Config) error
}

// HealthStatus is the result of the latest ping together with the pool
// usage at that moment.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	InUseConns    int           `json:"in_use_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// ConnectionConfig describes how to reach the store and tune its pool. Every
// field can be overridden by the DB_* variable named in its env tag;
// durations use Go syntax such as "30s".
type ConnectionConfig struct {
	Type                string        `json:"type" yaml:"type" env:"DB_TYPE"` // postgres, mysql, sqlite
	Host                string        `json:"host" yaml:"host" env:"DB_HOST"`
	Port                int           `json:"port" yaml:"port" env:"DB_PORT"`
	Username            string        `json:"username" yaml:"username" env:"DB_USERNAME"`
	Password            string        `json:"-" yaml:"password" env:"DB_PASSWORD"`
	DBName              string        `json:"dbname" yaml:"dbname" env:"DB_NAME"` // sqlite: file name without ".db", or ":memory:"
	SSLMode             string        `json:"sslmode" yaml:"sslmode" env:"DB_SSLMODE"`
	MaxIdleConns        int           `json:"max_idle_conns" yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns        int           `json:"max_open_conns" yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
	ConnectTimeout      time.Duration `json:"connect_timeout" yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	ReadTimeout         time.Duration `json:"read_timeout" yaml:"read_timeout" env:"DB_READ_TIMEOUT"`
	WriteTimeout        time.Duration `json:"write_timeout" yaml:"write_timeout" env:"DB_WRITE_TIMEOUT"`
	EnableReconnect     bool          `json:"enable_reconnect" yaml:"enable_reconnect" env:"DB_ENABLE_RECONNECT"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" yaml:"reconnect_interval" env:"DB_RECONNECT_INTERVAL"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries" env:"DB_MAX_RECONNECT_TRIES"`
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval" env:"DB_HEALTH_CHECK_INTERVAL"`
	EnableQueryLog      bool          `json:"enable_query_log" yaml:"enable_query_log" env:"DB_ENABLE_QUERY_LOG"`
	SlowQueryTime       time.Duration `json:"slow_query_time" yaml:"slow_query_time" env:"DB_SLOW_QUERY_TIME"`
}

func (c *ConnectionConfig) inMemory() bool {
	return c.DBName == MemoryDBName
}

// DataMigrateConfig controls schema migration on startup.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool `json:"enable_migrate_on_startup" yaml:"enable_migrate_on_startup"`
	EnableIndexes          bool `json:"enable_indexes" yaml:"enable_indexes"`
}

// DataInitConfig controls seeding. Seeders only run in the "development"
// environment.
type DataInitConfig struct {
	AutoInitOnMigration bool   `json:"auto_init_on_migration" yaml:"auto_init_on_migration"`
	Environment         string `json:"environment" yaml:"environment"`
}

type Config struct {
	ConnectionConfig  ConnectionConfig  `json:"connection_config" yaml:"connection"`
	DataMigrateConfig DataMigrateConfig `json:"data_migrate_config" yaml:"migrate"`
	DataInitConfig    DataInitConfig    `json:"data_init_config" yaml:"init"`
}

// DefaultConnectionConfig points at a local SQLite file named brandhub.db.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:                "sqlite",
		DBName:              "brandhub",
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     30 * time.Minute,
		ConnectTimeout:      10 * time.Second,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		EnableReconnect:     true,
		ReconnectInterval:   5 * time.Second,
		MaxReconnectTries:   3,
		HealthCheckInterval: 5 * time.Minute,
		SlowQueryTime:       2 * time.Second,
	}
}

// DefaultConfig migrates on startup, creates the indexes and seeds the
// development data.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		DataMigrateConfig: DataMigrateConfig{
			EnableMigrateOnStartup: true,
			EnableIndexes:          true,
		},
		DataInitConfig: DataInitConfig{
			AutoInitOnMigration: true,
			Environment:         "development",
		},
	}
}
