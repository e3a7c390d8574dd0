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

// MinFoundingYear is the lowest year accepted by founding year range queries.
const MinFoundingYear = 1800

// BrandService implements the brand use cases over one unit of work.
type BrandService struct {
	uow    BrandUnitOfWork
	logger *logrus.Logger
	now    func() time.Time
}

func NewBrandService(uow BrandUnitOfWork, opts ...Option) *BrandService {
	o := newOptions("BRAND", opts)
	return &BrandService{uow: uow, logger: o.logger, now: o.now}
}

func (s *BrandService) GetAll(ctx context.Context) ([]*BrandResponse, error) {
	brands, err := s.uow.Brands().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return toBrandResponses(brands), nil
}

// Page lists brands one page at a time, ordered by id.
func (s *BrandService) Page(ctx context.Context, page, pageSize int) (*types.Pagination[BrandResponse], error) {
	p, err := s.uow.Brands().Page(ctx, types.NewDefaultPageRequest(page, pageSize))
	if err != nil {
		return nil, fmt.Errorf("page brands: %w", err)
	}
	return types.MapPagination(p, toBrandResponse), nil
}

// GetByID returns (nil, nil) when no brand has the id.
func (s *BrandService) GetByID(ctx context.Context, id int64) (*BrandResponse, error) {
	b, err := s.uow.Brands().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get brand %d: %w", id, err)
	}
	if b == nil {
		return nil, nil
	}
	return toBrandResponse(b), nil
}

// SearchByName rejects a blank name. The name is matched as given, without
// trimming.
func (s *BrandService) SearchByName(ctx context.Context, name string) ([]*BrandResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("search name must not be empty")
	}
	brands, err := s.uow.Brands().SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search brands: %w", err)
	}
	return toBrandResponses(brands), nil
}

func (s *BrandService) GetActive(ctx context.Context) ([]*BrandResponse, error) {
	brands, err := s.uow.Brands().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active brands: %w", err)
	}
	return toBrandResponses(brands), nil
}

func (s *BrandService) GetByCountry(ctx context.Context, country string) ([]*BrandResponse, error) {
	brands, err := s.uow.Brands().GetByCountry(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("list brands by country: %w", err)
	}
	return toBrandResponses(brands), nil
}

// GetByFoundingYearRange requires MinFoundingYear <= start <= end <= the
// current year.
func (s *BrandService) GetByFoundingYearRange(ctx context.Context, start, end int) ([]*BrandResponse, error) {
	if err := s.validateYearRange(start, end); err != nil {
		return nil, err
	}
	brands, err := s.uow.Brands().GetByFoundingYearRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list brands by founding year: %w", err)
	}
	return toBrandResponses(brands), nil
}

func (s *BrandService) validateYearRange(start, end int) error {
	switch {
	case start > end:
		return invalid("start year %d is after end year %d", start, end)
	case start < MinFoundingYear:
		return invalid("start year must not be before %d", MinFoundingYear)
	case end > s.now().Year():
		return invalid("end year must not be after %d", s.now().Year())
	}
	return nil
}

// Create stages a new brand and saves it on its own.
func (s *BrandService) Create(ctx context.Context, input CreateBrandInput) (*BrandResponse, error) {
	b, err := s.newBrand(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.uow.Brands().Add(ctx, b); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"brand_id": b.ID, "name": b.Name}).Info("brand created")
	return toBrandResponse(b), nil
}

// Update replaces every mutable field of the brand. It reports false, and
// stages nothing, when the brand does not exist.
func (s *BrandService) Update(ctx context.Context, id int64, input UpdateBrandInput) (bool, error) {
	if input.ID != id {
		return false, invalid("path id %d does not match body id %d", id, input.ID)
	}
	if err := validateStruct(input); err != nil {
		return false, err
	}

	b, err := s.uow.Brands().GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("update brand %d: %w", id, err)
	}
	if b == nil {
		return false, nil
	}

	b.Name = input.Name
	b.CountryOfOrigin = input.CountryOfOrigin
	b.FoundingYear = input.FoundingYear
	b.Website = input.Website
	b.Active = input.Active
	if err := b.Validate(); err != nil {
		return false, invalid("%s", err.Error())
	}

	if err := s.uow.Brands().Update(ctx, b); err != nil {
		return false, fmt.Errorf("update brand %d: %w", id, err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return false, fmt.Errorf("update brand %d: %w", id, err)
	}

	s.logger.WithField("brand_id", id).Info("brand updated")
	return true, nil
}

// Delete removes the brand. It reports false when the brand does not exist.
func (s *BrandService) Delete(ctx context.Context, id int64) (bool, error) {
	b, err := s.uow.Brands().GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete brand %d: %w", id, err)
	}
	if b == nil {
		return false, nil
	}

	if err := s.uow.Brands().Delete(ctx, b); err != nil {
		return false, fmt.Errorf("delete brand %d: %w", id, err)
	}
	if _, err := s.uow.SaveChanges(ctx); err != nil {
		return false, fmt.Errorf("delete brand %d: %w", id, err)
	}

	s.logger.WithField("brand_id", id).Info("brand deleted")
	return true, nil
}

// Import creates all brands in one explicit transaction. Either every brand
// is stored or none is.
func (s *BrandService) Import(ctx context.Context, inputs []CreateBrandInput) ([]*BrandResponse, error) {
	if len(inputs) == 0 {
		return nil, invalid("import must contain at least one brand")
	}
	brands := make([]*model.Brand, 0, len(inputs))
	for i, input := range inputs {
		b, err := s.newBrand(input)
		if err != nil {
			return nil, fmt.Errorf("brand %d: %w", i, err)
		}
		brands = append(brands, b)
	}

	if err := s.uow.BeginTransaction(ctx); err != nil {
		return nil, fmt.Errorf("import brands: %w", err)
	}
	for _, b := range brands {
		if _, err := s.uow.Brands().Add(ctx, b); err != nil {
			if rbErr := s.uow.RollbackTransaction(ctx); rbErr != nil {
				s.logger.WithError(rbErr).Error("rollback of brand import failed")
			}
			return nil, fmt.Errorf("import brands: %w", err)
		}
	}
	if err := s.uow.CommitTransaction(ctx); err != nil {
		return nil, fmt.Errorf("import brands: %w", err)
	}

	s.logger.WithField("count", len(brands)).Info("brands imported")
	return toBrandResponses(brands), nil
}

func (s *BrandService) newBrand(input CreateBrandInput) (*model.Brand, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	b := &model.Brand{
		Name:            input.Name,
		CountryOfOrigin: input.CountryOfOrigin,
		FoundingYear:    input.FoundingYear,
		Website:         input.Website,
		Active:          active,
		CreatedAt:       s.now(),
	}
	if err := b.Validate(); err != nil {
		return nil, invalid("%s", err.Error())
	}
	return b, nil
}
