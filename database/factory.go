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
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Open applies the DB_* environment overrides to cfg, connects a new Manager
// and, when cfg asks for it, migrates the schema. The caller owns the
// returned Manager and must Close it.
func Open(ctx context.Context, cfg *Config, logger Logger) (Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	if err := env.Parse(&cfg.ConnectionConfig); err != nil {
		return nil, fmt.Errorf("read database environment: %w", err)
	}
	if _, ok := openers[cfg.ConnectionConfig.Type]; !ok {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v",
			cfg.ConnectionConfig.Type, SupportedTypes())
	}

	m := NewManager(&cfg.ConnectionConfig, logger)
	if err := m.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DataMigrateConfig.EnableMigrateOnStartup {
		if err := m.RunMigrations(ctx, cfg); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	return m, nil
}
