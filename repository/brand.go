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
	"strings"

	"github.com/tomoncle/brandhub/model"
	"github.com/uptrace/bun"
)

type brandRepositoryImpl struct {
	*baseRepositoryImpl[model.Brand]
}

func NewBrandRepository(session *Session) BrandRepository {
	return &brandRepositoryImpl{&baseRepositoryImpl[model.Brand]{session: session}}
}

func (r *brandRepositoryImpl) SearchByName(ctx context.Context, name string) ([]*model.Brand, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("LOWER(name) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(name)).
			Order("id ASC")
	})
}

func (r *brandRepositoryImpl) GetActive(ctx context.Context) ([]*model.Brand, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("active = ?", true).Order("id ASC")
	})
}

func (r *brandRepositoryImpl) GetByCountry(ctx context.Context, country string) ([]*model.Brand, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("country_of_origin IS NOT NULL").
			Where("LOWER(country_of_origin) = ?", strings.ToLower(country)).
			Order("id ASC")
	})
}

func (r *brandRepositoryImpl) GetByFoundingYearRange(ctx context.Context, start, end int) ([]*model.Brand, error) {
	return r.selectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("founding_year >= ?", start).
			Where("founding_year <= ?", end).
			Order("founding_year ASC", "id ASC")
	})
}
