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

// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/brandhub/database"
	"github.com/tomoncle/brandhub/model"
	"github.com/uptrace/bun"
)

// Open returns an empty, fully migrated in-memory database that is closed
// when the test ends. The database holds a single connection, so a test must
// not read through it while a transaction is open elsewhere.
func Open(t testing.TB) *bun.DB {
	t.Helper()
	return open(t, false)
}

// OpenSeeded is like Open but also runs the development seeders.
func OpenSeeded(t testing.TB) *bun.DB {
	t.Helper()
	return open(t, true)
}

func open(t testing.TB, seed bool) *bun.DB {
	t.Helper()
	model.Register()

	_, db, err := database.OpenSQLite(database.MemoryDBName)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.RegisterModel(database.RegisteredModelInstances()...)

	cfg := database.DefaultConfig()
	cfg.DataInitConfig.AutoInitOnMigration = seed
	err = database.NewMigrationManager(db, nil).WithConfig(cfg).RunMigrations(context.Background())
	require.NoError(t, err)
	return db
}
