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
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/tomoncle/brandhub/model"
	"github.com/tomoncle/brandhub/repository"
	"github.com/tomoncle/brandhub/types"
)

// --- Mock Unit of Work ---

type mockUnitOfWork struct {
	mock.Mock
	brands   *mockBrandRepository
	products *mockProductRepository
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		brands:   new(mockBrandRepository),
		products: new(mockProductRepository),
	}
}

func (m *mockUnitOfWork) Brands() repository.BrandRepository { return m.brands }

func (m *mockUnitOfWork) Products() repository.ProductRepository { return m.products }

func (m *mockUnitOfWork) SaveChanges(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUnitOfWork) BeginTransaction(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) CommitTransaction(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) RollbackTransaction(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Mock Brand Repository ---

type mockBrandRepository struct {
	mock.Mock
}

func (m *mockBrandRepository) brands(args mock.Arguments) ([]*model.Brand, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Brand), args.Error(1)
}

func (m *mockBrandRepository) GetAll(ctx context.Context) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx))
}

func (m *mockBrandRepository) GetByID(ctx context.Context, id int64) (*model.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Brand), args.Error(1)
}

func (m *mockBrandRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx, filter))
}

func (m *mockBrandRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockBrandRepository) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[model.Brand], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Pagination[model.Brand]), args.Error(1)
}

func (m *mockBrandRepository) Add(ctx context.Context, entity *model.Brand) (*model.Brand, error) {
	args := m.Called(ctx, entity)
	return entity, args.Error(0)
}

func (m *mockBrandRepository) Update(ctx context.Context, entity *model.Brand) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockBrandRepository) Delete(ctx context.Context, entity *model.Brand) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockBrandRepository) SearchByName(ctx context.Context, name string) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx, name))
}

func (m *mockBrandRepository) GetActive(ctx context.Context) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx))
}

func (m *mockBrandRepository) GetByCountry(ctx context.Context, country string) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx, country))
}

func (m *mockBrandRepository) GetByFoundingYearRange(ctx context.Context, start, end int) ([]*model.Brand, error) {
	return m.brands(m.Called(ctx, start, end))
}

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) products(args mock.Arguments) ([]*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *mockProductRepository) GetAll(ctx context.Context) ([]*model.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*model.Product, error) {
	return m.products(m.Called(ctx, filter))
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[model.Product], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Pagination[model.Product]), args.Error(1)
}

func (m *mockProductRepository) Add(ctx context.Context, entity *model.Product) (*model.Product, error) {
	args := m.Called(ctx, entity)
	return entity, args.Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, entity *model.Product) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, entity *model.Product) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockProductRepository) SearchByName(ctx context.Context, name string) ([]*model.Product, error) {
	return m.products(m.Called(ctx, name))
}

func (m *mockProductRepository) GetInStock(ctx context.Context) ([]*model.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *mockProductRepository) GetByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]*model.Product, error) {
	return m.products(m.Called(ctx, minPrice, maxPrice))
}

// --- Test Helpers ---

var testNow = time.Date(2025, 10, 25, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testOptions() []Option {
	return []Option{
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return testNow }),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
