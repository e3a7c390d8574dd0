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
	"os"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Migration is the row recorded in bun_migrations once a step has applied.
type Migration struct {
	bun.BaseModel `bun:"table:bun_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name,notnull"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
	Description string    `bun:"description"`
}

// MigrationFunc is one migration step. It runs inside a transaction together
// with the insert of its Migration row.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

type migrationStep struct {
	version     string
	name        string
	description string
	enabled     func(cfg *Config) bool
	up          MigrationFunc
}

// steps are applied in slice order, which is also version order.
var steps = []migrationStep{
	{
		version:     "001",
		name:        "create_base_tables",
		description: "Create a table for every registered model",
		enabled:     func(*Config) bool { return true },
		up:          createTables,
	},
	{
		version:     "002",
		name:        "create_indexes",
		description: "Create secondary indexes",
		enabled:     func(cfg *Config) bool { return cfg.DataMigrateConfig.EnableIndexes },
		up:          createIndexes,
	},
	{
		version:     "003",
		name:        "seed_initial_data",
		description: "Run the registered seeders",
		enabled: func(cfg *Config) bool {
			return cfg.DataInitConfig.AutoInitOnMigration &&
				strings.EqualFold(cfg.DataInitConfig.Environment, "development")
		},
		up: runSeeders,
	},
}

// MigrationManager applies the enabled steps that bun_migrations does not
// list yet.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	config *Config
}

// NewMigrationManager uses DefaultConfig until WithConfig is called. A nil
// logger means the package logger.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, config: DefaultConfig()}
}

// WithConfig replaces the migration and seed settings. A nil cfg keeps the
// current ones.
func (mm *MigrationManager) WithConfig(cfg *Config) *MigrationManager {
	if cfg != nil {
		mm.config = cfg
	}
	return mm
}

// RunMigrations applies every pending step, each in its own transaction.
// Statements are kept out of the query log unless BUNDEBUG_MIGRATION is set.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		SilenceQueryLog(true)
		defer SilenceQueryLog(false)
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	applied, err := mm.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, step := range steps {
		if done[step.version] || !step.enabled(mm.config) {
			continue
		}
		if err := mm.apply(ctx, step); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", step.version, err)
		}
		mm.logger.Info("Migration applied", "version", step.version, "name", step.name)
	}
	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) apply(ctx context.Context, step migrationStep) error {
	return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := step.up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     step.version,
			Name:        step.name,
			AppliedAt:   time.Now().UTC(),
			Description: step.description,
		}).Exec(ctx)
		return err
	})
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().Model(&migrations).Order("version ASC").Scan(ctx)
	return migrations, err
}

func createTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", modelName(model), err)
		}
	}
	return nil
}

func createIndexes(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		indexed, ok := model.(IndexedModel)
		if !ok {
			continue
		}
		for _, idx := range indexed.Indexes() {
			_, err := db.NewCreateIndex().
				Model(model).
				Index(idx.Name).
				Column(idx.Columns...).
				IfNotExists().
				Exec(ctx)
			// MySQL has no IF NOT EXISTS for indexes.
			if is, kind := IsSqlError(err); is && kind == ExistIndexErr {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

func runSeeders(ctx context.Context, db bun.IDB) error {
	for _, s := range defaultRegistry.Seeders() {
		if err := s.run(ctx, db); err != nil {
			return fmt.Errorf("seeder %s failed: %w", s.name, err)
		}
	}
	return nil
}
