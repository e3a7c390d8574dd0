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

	"github.com/tomoncle/brandhub/model"
	"github.com/uptrace/bun"
)

type productRepositoryImpl struct {
	*baseRepositoryImpl[model.Product]
}

func NewProductRepository(session *Session) ProductRepository {
	return &productRepositoryImpl{&baseRepositoryImpl[model.Product]{session: session}}
}

func (r *productRepositoryImpl) SearchByName(ctx context.Context, name string) ([]*model.Product, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("LOWER(name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(name)).
			Order("id ASC")
	})
}

func (r *productRepositoryImpl) GetInStock(ctx context.Context) ([]*model.Product, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("stock > 0").Order("name ASC", "id ASC")
	})
}

func (r *productRepositoryImpl) GetByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]*model.Product, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("price >= ?", minPrice).
			Where("price <= ?", maxPrice).
			Order("price ASC", "id ASC")
	})
}
