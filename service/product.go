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
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/model"
	"github.com/tomoncle/brandhub/types"
)

// ProductService implements the product use cases over one unit of work.
type ProductService struct {
	uow    ProductUnitOfWork
	logger *logrus.Logger
	now    func() time.Time
}

func NewProductService(uow ProductUnitOfWork, opts ...Option) *ProductService {
	o := newOptions("PRODUCT", opts)
	return &ProductService{uow: uow, logger: o.logger, now: o.now}
}

func (s *ProductService) GetAll(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.uow.Products().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Page(ctx context.Context, page, pageSize int) (*types.Pagination[ProductResponse], error) {
	p, err := s.uow.Products().Page(ctx, types.NewDefaultPageRequest(page, pageSize))
	if err != nil {
		return nil, fmt.Errorf("page products: %w", err)
	}
	return types.MapPagination(p, toProductResponse), nil
}

// GetByID returns (nil, nil) when no product has the id.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	p, err := s.uow.Products().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}
	return toProductResponse(p), nil
}

func (s *ProductService) SearchByName(ctx context.Context, name string) ([]*ProductResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("search name must not be empty")
	}
	products, err := s.uow.Products().SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) GetInStock(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.uow.Products().GetInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products in stock: %w", err)
	}
	return toProductResponses(products), nil
}

// GetByPriceRange requires 0 <= minPrice <= maxPrice, both in cents.
func (s *ProductService) GetByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]*ProductResponse, error) {
	if minPrice < 0 || minPrice > maxPrice {
		return nil, invalid("invalid price range [%d, %d]", minPrice, maxPrice)
	}
	products, err := s.uow.Products().GetByPriceRange(ctx, minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("list products by price: %w", err)
	}
	return toProductResponses(products), nil
}

func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductResponse, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CreatedAt:   s.now(),
	}
	if err := p.Validate(); err != nil {
		return nil, invalid("%s", err.Error())
	}

	if _, err := s.uow.Products().Add(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"product_id": p.ID, "name": p.Name}).Info("product created")
	return toProductResponse(p), nil
}

// Update reports false, and stages nothing, when the product does not exist.
func (s *ProductService) Update(ctx context.Context, id int64, input UpdateProductInput) (bool, error) {
	if input.ID != id {
		return false, invalid("path id %d does not match body id %d", id, input.ID)
	}
	if err := validateStruct(input); err != nil {
		return false, err
	}

	p, err := s.uow.Products().GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("update product %d: %w", id, err)
	}
	if p == nil {
		return false, nil
	}

	p.Name = input.Name
	p.Description = input.Description
	p.Price = input.Price
	p.Stock = input.Stock
	if err := p.Validate(); err != nil {
		return false, invalid("%s", err.Error())
	}

	if err := s.uow.Products().Update(ctx, p); err != nil {
		return false, fmt.Errorf("update product %d: %w", id, err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return false, fmt.Errorf("update product %d: %w", id, err)
	}

	s.logger.WithField("product_id", id).Info("product updated")
	return true, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) (bool, error) {
	p, err := s.uow.Products().GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	if p == nil {
		return false, nil
	}

	if err := s.uow.Products().Delete(ctx, p); err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	return true, nil
}
