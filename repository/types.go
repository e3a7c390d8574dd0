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
	"github.com/tomoncle/brandhub/types"
)

// ReadRepository reads entities straight from the store.
type ReadRepository[T any] interface {
	GetAll(ctx context.Context) ([]*T, error)

	// GetByID returns (nil, nil) when no entity has the id.
	GetByID(ctx context.Context, id int64) (*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Count(ctx context.Context) (int, error)
}

// PageQueryRepository defines pagination for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// WriteRepository stages mutations on the session. Nothing reaches the store
// until the session is flushed.
type WriteRepository[T any] interface {
	// Add stages an insert. The identity is written back into entity on
	// flush.
	Add(ctx context.Context, entity *T) (*T, error)

	// Update stages a replacement of every mutable column, matched by id.
	Update(ctx context.Context, entity *T) error

	// Delete stages a delete by id.
	Delete(ctx context.Context, entity *T) error
}

// Repository combines reads, pagination and staged writes.
type Repository[T any] interface {
	ReadRepository[T]
	PageQueryRepository[T]
	WriteRepository[T]
}

// BrandRepository adds the brand lookups.
type BrandRepository interface {
	Repository[model.Brand]

	// SearchByName matches a case-insensitive substring of the name. An empty
	// substring matches every brand.
	SearchByName(ctx context.Context, name string) ([]*model.Brand, error)
	GetActive(ctx context.Context) ([]*model.Brand, error)
	// GetByCountry matches the country case-insensitively. Brands without a
	// country never match.
	GetByCountry(ctx context.Context, country string) ([]*model.Brand, error)
	// GetByFoundingYearRange returns brands founded in [start, end], oldest
	// first.
	GetByFoundingYearRange(ctx context.Context, start, end int) ([]*model.Brand, error)
}

// ProductRepository adds the product lookups.
type ProductRepository interface {
	Repository[model.Product]

	SearchByName(ctx context.Context, name string) ([]*model.Product, error)
	GetInStock(ctx context.Context) ([]*model.Product, error)
	// GetByPriceRange returns products priced in [minPrice, maxPrice] cents, cheapest
	// first.
	GetByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]*model.Product, error)
}
