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
	"strings"

	"github.com/tomoncle/brandhub/types"
	"github.com/uptrace/bun"
)

type baseRepositoryImpl[T any] struct {
	session *Session
}

// NewRepository returns a generic repository bound to the session.
func NewRepository[T any](session *Session) Repository[T] {
	return &baseRepositoryImpl[T]{session: session}
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("id ASC")
	})
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	db, err := r.session.IDB()
	if err != nil {
		return nil, err
	}
	entity := new(T)
	err = db.NewSelect().Model(entity).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter != nil {
			q = q.Where(filter.Schema, filter.Args...)
		}
		return q.Order("id ASC")
	})
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	db, err := r.session.IDB()
	if err != nil {
		return 0, err
	}
	return db.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	db, err := r.session.IDB()
	if err != nil {
		return nil, err
	}
	var entities []*T
	query := db.NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = query.
		Order(pageRequest.GetOrders()...).
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.SetTotal(total)
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Add(ctx context.Context, entity *T) (*T, error) {
	err := r.session.stage("insert", entity, func(ctx context.Context, db bun.IDB) (sql.Result, error) {
		return db.NewInsert().Model(entity).Exec(ctx)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update never writes created_at.
func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	if err := requireIdentity(entity); err != nil {
		return err
	}
	return r.session.stage("update", entity, func(ctx context.Context, db bun.IDB) (sql.Result, error) {
		return db.NewUpdate().Model(entity).ExcludeColumn("created_at").WherePK().Exec(ctx)
	})
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, entity *T) error {
	if err := requireIdentity(entity); err != nil {
		return err
	}
	return r.session.stage("delete", entity, func(ctx context.Context, db bun.IDB) (sql.Result, error) {
		return db.NewDelete().Model(entity).WherePK().Exec(ctx)
	})
}

func (r *baseRepositoryImpl[T]) selectMany(ctx context.Context, build func(q *bun.SelectQuery) *bun.SelectQuery) ([]*T, error) {
	db, err := r.session.IDB()
	if err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	if err := build(db.NewSelect().Model(&entities)).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func requireIdentity[T any](entity *T) error {
	if entity == nil {
		return ErrMissingIdentity
	}
	if id, ok := any(entity).(Identifiable); ok && id.Identity() == 0 {
		return ErrMissingIdentity
	}
	return nil
}

// likeEscape is the LIKE escape character. A backslash would need different
// quoting on MySQL.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// containsPattern builds a case-folded LIKE pattern matching s anywhere,
// with the LIKE metacharacters of s taken literally.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}
