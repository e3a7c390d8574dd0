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
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var (
	ErrSessionClosed         = errors.New("session is closed")
	ErrTransactionInProgress = errors.New("a transaction is already in progress")
	ErrNoTransaction         = errors.New("no transaction in progress")
	ErrMissingIdentity       = errors.New("entity has no identity")
	ErrNoDatabase            = errors.New("no database available")
)

// Identifiable is implemented by entities with a store-assigned identity.
// A zero identity means the entity was never persisted.
type Identifiable interface {
	Identity() int64
}

type writeFunc func(ctx context.Context, db bun.IDB) (sql.Result, error)

type pendingWrite struct {
	op    string
	model any
	exec  writeFunc
}

// Session tracks the writes staged by repositories and applies them on
// Flush. Reads see the open transaction, if any, and never the pending
// writes. A Session is not safe for concurrent use.
type Session struct {
	db      *bun.DB
	tx      *bun.Tx
	pending []pendingWrite
	closed  bool
}

func NewSession(db *bun.DB) *Session {
	return &Session{db: db}
}

// IDB returns the handle reads should run on: the open transaction or the
// pool.
func (s *Session) IDB() (bun.IDB, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return s.db, nil
}

func (s *Session) stage(op string, model any, exec writeFunc) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.pending = append(s.pending, pendingWrite{op: op, model: model, exec: exec})
	return nil
}

// Pending returns the number of staged writes.
func (s *Session) Pending() int {
	return len(s.pending)
}

func (s *Session) InTransaction() bool {
	return s.tx != nil
}

func (s *Session) Closed() bool {
	return s.closed
}

// Flush applies the staged writes in staging order and returns the number
// of affected rows. Without an open transaction the writes run in a
// transaction of their own. The staged writes are discarded whether or not
// the flush succeeds.
func (s *Session) Flush(ctx context.Context) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	writes := s.pending
	s.pending = nil
	if len(writes) == 0 {
		return 0, nil
	}

	if s.tx != nil {
		return applyWrites(ctx, s.tx, writes)
	}
	if s.db == nil {
		return 0, ErrNoDatabase
	}

	var affected int64
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := applyWrites(ctx, tx, writes)
		affected = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func applyWrites(ctx context.Context, db bun.IDB, writes []pendingWrite) (int64, error) {
	var affected int64
	for _, w := range writes {
		res, err := w.exec(ctx, db)
		if err != nil {
			return affected, fmt.Errorf("%s %T: %w", w.op, w.model, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}
	return affected, nil
}

// Begin opens a transaction. Nested transactions are rejected.
func (s *Session) Begin(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return ErrTransactionInProgress
	}
	if s.db == nil {
		return ErrNoDatabase
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = &tx
	return nil
}

// Commit commits the open transaction and clears the handle, even when the
// commit fails.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return ErrNoTransaction
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Rollback discards the staged writes and rolls back the open transaction,
// if any. Without a transaction it only discards.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.pending = nil
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// Close rolls back any open transaction and makes the session unusable.
// Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	return err
}
