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

// Package uow implements the unit of work: one session shared by the
// repositories it hands out, with flush and explicit transaction control.
package uow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/repository"
	"github.com/tomoncle/brandhub/utils"
	"github.com/uptrace/bun"
)

// UnitOfWork owns one repository.Session for its lifetime. It is scoped to a
// single request and is not safe for concurrent use.
type UnitOfWork struct {
	session *repository.Session
	logger  *logrus.Logger

	brandsOnce   sync.Once
	brands       repository.BrandRepository
	productsOnce sync.Once
	products     repository.ProductRepository
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithLogger replaces the default "UOW" logger.
func WithLogger(l *logrus.Logger) Option {
	return func(u *UnitOfWork) {
		if l != nil {
			u.logger = l
		}
	}
}

func New(db *bun.DB, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		session: repository.NewSession(db),
		logger:  utils.GetLogger("UOW"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Brands returns the brand repository of this unit of work. Repeated calls
// return the same handle.
func (u *UnitOfWork) Brands() repository.BrandRepository {
	u.brandsOnce.Do(func() { u.brands = repository.NewBrandRepository(u.session) })
	return u.brands
}

// Products returns the product repository of this unit of work. Repeated
// calls return the same handle.
func (u *UnitOfWork) Products() repository.ProductRepository {
	u.productsOnce.Do(func() { u.products = repository.NewProductRepository(u.session) })
	return u.products
}

// SaveChanges flushes every write staged through this unit of work and
// returns the number of affected rows. Staged writes are dropped when the
// flush fails.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	n, err := u.session.Flush(ctx)
	if err != nil {
		flushesTotal.WithLabelValues(resultError).Inc()
		return 0, fmt.Errorf("save changes: %w", err)
	}
	flushesTotal.WithLabelValues(resultSuccess).Inc()
	flushedRows.Observe(float64(n))
	return n, nil
}

// BeginTransaction opens an explicit transaction. It fails with
// repository.ErrTransactionInProgress when one is already open.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	if err := u.session.Begin(ctx); err != nil {
		return err
	}
	u.logger.Debug("transaction started")
	return nil
}

// CommitTransaction saves the staged writes and commits the open
// transaction. On any failure the transaction is rolled back and the
// original error returned. Without an open transaction it only saves.
func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	inTx := u.session.InTransaction()

	if _, err := u.SaveChanges(ctx); err != nil {
		u.rollbackAfterFailure(ctx, err)
		return err
	}
	if !inTx {
		return nil
	}
	if err := u.session.Commit(); err != nil {
		err = fmt.Errorf("commit transaction: %w", err)
		u.rollbackAfterFailure(ctx, err)
		return err
	}
	transactionsTotal.WithLabelValues(outcomeCommitted).Inc()
	u.logger.Debug("transaction committed")
	return nil
}

// RollbackTransaction discards the staged writes and the open transaction.
// It is a no-op apart from the discard when no transaction is open.
func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	inTx := u.session.InTransaction()
	if err := u.session.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	if inTx {
		transactionsTotal.WithLabelValues(outcomeRolledBack).Inc()
		u.logger.Debug("transaction rolled back")
	}
	return nil
}

func (u *UnitOfWork) rollbackAfterFailure(ctx context.Context, cause error) {
	// A closed session has nothing left to roll back.
	if errors.Is(cause, repository.ErrSessionClosed) {
		return
	}
	if err := u.RollbackTransaction(ctx); err != nil {
		u.logger.WithFields(logrus.Fields{
			"error": err,
			"cause": cause,
		}).Error("rollback after failed commit")
	}
}

// Close rolls back any open transaction and releases the session. Every
// later operation fails with repository.ErrSessionClosed.
func (u *UnitOfWork) Close() error {
	inTx := u.session.InTransaction()
	if err := u.session.Close(); err != nil {
		return fmt.Errorf("close unit of work: %w", err)
	}
	if inTx {
		transactionsTotal.WithLabelValues(outcomeRolledBack).Inc()
	}
	return nil
}

// Factory creates a fresh UnitOfWork per request over a shared pool.
type Factory struct {
	db   func() *bun.DB
	opts []Option
}

// NewFactory binds every unit of work to db.
func NewFactory(db *bun.DB, opts ...Option) *Factory {
	return NewFactoryFunc(func() *bun.DB { return db }, opts...)
}

// NewFactoryFunc looks the pool up through db on every New, so a pool
// replaced after a reconnect is picked up by the next request. A nil pool
// makes every store access fail with repository.ErrNoDatabase.
func NewFactoryFunc(db func() *bun.DB, opts ...Option) *Factory {
	return &Factory{db: db, opts: opts}
}

func (f *Factory) New() *UnitOfWork {
	return New(f.db(), f.opts...)
}
