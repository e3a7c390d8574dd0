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

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/brandhub/internal/testdb"
	"github.com/tomoncle/brandhub/model"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

var fixedTime = time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newBrand(name string, country *string, year int) *model.Brand {
	return &model.Brand{
		Name:            name,
		CountryOfOrigin: country,
		FoundingYear:    year,
		Active:          true,
		CreatedAt:       fixedTime,
	}
}

// persistBrands stages brands on s and flushes them.
func persistBrands(t *testing.T, s *Session, brands ...*model.Brand) {
	t.Helper()
	repo := NewBrandRepository(s)
	for _, b := range brands {
		_, err := repo.Add(context.Background(), b)
		require.NoError(t, err)
	}
	n, err := s.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len(brands)), n)
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestSession_FlushWithoutPendingWrites(t *testing.T) {
	s := NewSession(testdb.Open(t))

	n, err := s.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSession_StagedWritesAreNotVisibleUntilFlush(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	b, err := repo.Add(ctx, newBrand("Toyota", strPtr("Japan"), 1937))
	require.NoError(t, err)
	assert.Zero(t, b.ID, "identity is assigned on flush")
	assert.Equal(t, 1, s.Pending())

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotZero(t, b.ID)
	assert.Zero(t, s.Pending())

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestSession_FailedFlushDiscardsPendingWrites(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	_, err := repo.Add(ctx, newBrand("Ford", nil, 1903))
	require.NoError(t, err)
	// the first insert of an empty table gets identity 1
	dup := newBrand("Duplicate", nil, 1900)
	dup.ID = 1
	_, err = repo.Add(ctx, dup)
	require.NoError(t, err)

	_, err = s.Flush(ctx)
	require.Error(t, err)
	assert.Zero(t, s.Pending())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "the internal transaction rolls back every write of the flush")
}

func TestSession_BeginRejectsNestedTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))

	require.NoError(t, s.Begin(ctx))
	assert.True(t, s.InTransaction())
	assert.ErrorIs(t, s.Begin(ctx), ErrTransactionInProgress)
	require.NoError(t, s.Rollback())
	assert.False(t, s.InTransaction())
}

func TestSession_CommitWithoutTransaction(t *testing.T) {
	s := NewSession(testdb.Open(t))
	assert.ErrorIs(t, s.Commit(), ErrNoTransaction)
}

func TestSession_RollbackUndoesFlushedWrites(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	require.NoError(t, s.Begin(ctx))
	persistBrands(t, s, newBrand("BMW", strPtr("Germany"), 1916))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "reads see the open transaction")

	require.NoError(t, s.Rollback())

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSession_RollbackWithoutTransactionDiscardsPending(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))

	_, err := NewBrandRepository(s).Add(ctx, newBrand("Tesla", nil, 2003))
	require.NoError(t, err)

	require.NoError(t, s.Rollback())
	assert.Zero(t, s.Pending())
}

func TestSession_ClosedSessionRejectsEverything(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	require.NoError(t, s.Begin(ctx))
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.False(t, s.InTransaction())
	require.NoError(t, s.Close(), "closing twice is a no-op")

	_, err := repo.GetAll(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = repo.Add(ctx, newBrand("Honda", nil, 1948))
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Flush(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Begin(ctx), ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(), ErrSessionClosed)
	assert.ErrorIs(t, s.Rollback(), ErrSessionClosed)
}

func TestSession_WithoutDatabase(t *testing.T) {
	ctx := context.Background()
	s := NewSession(nil)
	repo := NewBrandRepository(s)

	_, err := repo.GetAll(ctx)
	assert.ErrorIs(t, err, ErrNoDatabase)
	_, err = repo.Add(ctx, newBrand("Honda", nil, 1948))
	require.NoError(t, err, "staging needs no database")
	_, err = s.Flush(ctx)
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.Zero(t, s.Pending())
	assert.ErrorIs(t, s.Begin(ctx), ErrNoDatabase)
	assert.False(t, s.InTransaction())
}
