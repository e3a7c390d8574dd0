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

package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/model"
	"github.com/tomoncle/brandhub/repository"
	"github.com/tomoncle/brandhub/utils"
)

// Transactional is the save and transaction surface of a unit of work.
type Transactional interface {
	SaveChanges(ctx context.Context) (int64, error)
	BeginTransaction(ctx context.Context) error
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}

// BrandUnitOfWork is what BrandService needs from a unit of work.
type BrandUnitOfWork interface {
	Transactional
	Brands() repository.BrandRepository
}

// ProductUnitOfWork is what ProductService needs from a unit of work.
type ProductUnitOfWork interface {
	Transactional
	Products() repository.ProductRepository
}

type options struct {
	logger *logrus.Logger
	now    func() time.Time
}

// Option configures a service.
type Option func(*options)

func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(loggerName string, opts []Option) options {
	o := options{
		logger: utils.GetLogger(loggerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BrandResponse is the wire shape of a brand.
type BrandResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	CountryOfOrigin *string   `json:"country_of_origin"`
	FoundingYear    int       `json:"founding_year"`
	Website         *string   `json:"website"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateBrandInput holds the fields of a new brand. Active defaults to true.
type CreateBrandInput struct {
	Name            string  `json:"name" validate:"required,max=100"`
	CountryOfOrigin *string `json:"country_of_origin" validate:"omitempty,max=100"`
	FoundingYear    int     `json:"founding_year" validate:"required"`
	Website         *string `json:"website" validate:"omitempty,max=200"`
	Active          *bool   `json:"active"`
}

// UpdateBrandInput replaces every mutable field of a brand. ID must match the
// brand being updated.
type UpdateBrandInput struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name" validate:"required,max=100"`
	CountryOfOrigin *string `json:"country_of_origin" validate:"omitempty,max=100"`
	FoundingYear    int     `json:"founding_year" validate:"required"`
	Website         *string `json:"website" validate:"omitempty,max=200"`
	Active          bool    `json:"active"`
}

func toBrandResponse(b *model.Brand) *BrandResponse {
	return &BrandResponse{
		ID:              b.ID,
		Name:            b.Name,
		CountryOfOrigin: b.CountryOfOrigin,
		FoundingYear:    b.FoundingYear,
		Website:         b.Website,
		Active:          b.Active,
		CreatedAt:       b.CreatedAt,
	}
}

func toBrandResponses(brands []*model.Brand) []*BrandResponse {
	out := make([]*BrandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, toBrandResponse(b))
	}
	return out
}

// ProductResponse is the wire shape of a product. Price is in cents.
type ProductResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Price       int64   `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type UpdateProductInput struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Price       int64   `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

func toProductResponse(p *model.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []*model.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}
