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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/brandhub/database"
	"github.com/tomoncle/brandhub/internal/testdb"
	"github.com/tomoncle/brandhub/model"
	"github.com/tomoncle/brandhub/types"
)

func brandNames(brands []*model.Brand) []string {
	names := make([]string, 0, len(brands))
	for _, b := range brands {
		names = append(names, b.Name)
	}
	return names
}

func brandYears(brands []*model.Brand) []int {
	years := make([]int, 0, len(brands))
	for _, b := range brands {
		years = append(years, b.FoundingYear)
	}
	return years
}

func TestBrandRepository_AddThenGetByID(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	added := newBrand("Toyota", strPtr("Japan"), 1937)
	added.Website = strPtr("https://www.toyota.com")
	persistBrands(t, s, added)
	require.NotZero(t, added.ID)

	got, err := repo.GetByID(ctx, added.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, added.Name, got.Name)
	assert.Equal(t, added.CountryOfOrigin, got.CountryOfOrigin)
	assert.Equal(t, added.FoundingYear, got.FoundingYear)
	assert.Equal(t, added.Website, got.Website)
	assert.Equal(t, added.Active, got.Active)
	assert.True(t, added.CreatedAt.Equal(got.CreatedAt))
}

func TestBrandRepository_GetByIDAbsent(t *testing.T) {
	repo := NewBrandRepository(NewSession(testdb.Open(t)))

	got, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBrandRepository_InactiveBrandIsPersisted(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	b := newBrand("Saab", strPtr("Sweden"), 1945)
	b.Active = false
	persistBrands(t, s, b)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Active)
}

func TestBrandRepository_UpdateReplacesMutableColumns(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	b := newBrand("Ford", strPtr("United States"), 1903)
	persistBrands(t, s, b)

	changed := *b
	changed.Name = "Ford Motor Company"
	changed.CountryOfOrigin = nil
	changed.FoundingYear = 1904
	changed.Active = false
	changed.CreatedAt = fixedTime.AddDate(1, 0, 0)
	require.NoError(t, repo.Update(ctx, &changed))

	n, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ford Motor Company", got.Name)
	assert.Nil(t, got.CountryOfOrigin)
	assert.Equal(t, 1904, got.FoundingYear)
	assert.False(t, got.Active)
	assert.True(t, fixedTime.Equal(got.CreatedAt), "created_at is write-once")
}

func TestBrandRepository_DeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	keep := newBrand("BMW", strPtr("Germany"), 1916)
	drop := newBrand("Saturn", strPtr("United States"), 1985)
	persistBrands(t, s, keep, drop)

	require.NoError(t, repo.Delete(ctx, drop))
	n, err := s.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BMW"}, brandNames(all))
}

func TestBrandRepository_MutationsRequireIdentity(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	assert.ErrorIs(t, repo.Update(ctx, newBrand("Unsaved", nil, 2000)), ErrMissingIdentity)
	assert.ErrorIs(t, repo.Delete(ctx, newBrand("Unsaved", nil, 2000)), ErrMissingIdentity)
	assert.ErrorIs(t, repo.Delete(ctx, nil), ErrMissingIdentity)
	assert.Zero(t, s.Pending())
}

func TestBrandRepository_SearchByName(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("BMW", nil, 1916),
		newBrand("Benz Motors", nil, 1883),
		newBrand("Mercedes-Benz", nil, 1926),
	)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"lower case query", "bmw", []string{"BMW"}},
		{"substring in two names", "benz", []string{"Benz Motors", "Mercedes-Benz"}},
		{"mixed case query", "MeRcEdEs", []string{"Mercedes-Benz"}},
		{"empty query matches all", "", []string{"BMW", "Benz Motors", "Mercedes-Benz"}},
		{"whitespace is not trimmed", " bmw", []string{}},
		{"percent is literal", "%", []string{}},
		{"underscore is literal", "b_w", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchByName(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, brandNames(got))
		})
	}
}

func TestBrandRepository_SearchByNameEscapesMetacharacters(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("100% Electric", nil, 2010),
		newBrand("Rolls_Royce", nil, 1904),
		newBrand("Wow! Motors", nil, 2020),
	)

	got, err := repo.SearchByName(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Electric"}, brandNames(got))

	got, err = repo.SearchByName(ctx, "s_r")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rolls_Royce"}, brandNames(got))

	got, err = repo.SearchByName(ctx, "wow!")
	require.NoError(t, err)
	assert.Equal(t, []string{"Wow! Motors"}, brandNames(got))
}

func TestBrandRepository_GetActive(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)

	retired := newBrand("Pontiac", strPtr("United States"), 1926)
	retired.Active = false
	persistBrands(t, s, newBrand("Honda", strPtr("Japan"), 1948), retired, newBrand("Kia", nil, 1944))

	got, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Honda", "Kia"}, brandNames(got))
	for _, b := range got {
		assert.True(t, b.Active)
	}
}

func TestBrandRepository_GetByCountry(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("Toyota", strPtr("Japón"), 1937),
		newBrand("Nissan", strPtr("japón"), 1933),
		newBrand("Mazda", nil, 1920),
		newBrand("Hyundai", strPtr("Corea"), 1967),
	)

	got, err := repo.GetByCountry(ctx, "Japón")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Toyota", "Nissan"}, brandNames(got))

	got, err = repo.GetByCountry(ctx, "jap")
	require.NoError(t, err)
	assert.Empty(t, got, "country match is exact")

	got, err = repo.GetByCountry(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got, "brands without a country never match")
}

func TestBrandRepository_CaseFoldingBeyondASCII(t *testing.T) {
	if !database.SQLiteUnicodeLower {
		t.Skip("the SQLite driver of this build folds ASCII only")
	}
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("ŠKODA", strPtr("JAPÓN"), 1895),
		newBrand("Citroën", strPtr("Japón"), 1919),
	)

	got, err := repo.GetByCountry(ctx, "Japón")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ŠKODA", "Citroën"}, brandNames(got))

	got, err = repo.SearchByName(ctx, "škoda")
	require.NoError(t, err)
	assert.Equal(t, []string{"ŠKODA"}, brandNames(got))

	got, err = repo.SearchByName(ctx, "CITROËN")
	require.NoError(t, err)
	assert.Equal(t, []string{"Citroën"}, brandNames(got))
}

func TestBrandRepository_GetByFoundingYearRange(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("Tesla", nil, 2003),
		newBrand("Toyota", nil, 1937),
		newBrand("Ford", nil, 1903),
		newBrand("BMW", nil, 1916),
	)

	got, err := repo.GetByFoundingYearRange(ctx, 1900, 1940)
	require.NoError(t, err)
	assert.Equal(t, []int{1903, 1916, 1937}, brandYears(got))

	got, err = repo.GetByFoundingYearRange(ctx, 1903, 1903)
	require.NoError(t, err)
	assert.Equal(t, []int{1903}, brandYears(got), "bounds are inclusive")

	got, err = repo.GetByFoundingYearRange(ctx, 1950, 1990)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBrandRepository_CountAndPage(t *testing.T) {
	ctx := context.Background()
	s := NewSession(testdb.Open(t))
	repo := NewBrandRepository(s)
	persistBrands(t, s,
		newBrand("A", nil, 1901),
		newBrand("B", nil, 1902),
		newBrand("C", nil, 1903),
	)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page, err := repo.Page(ctx, types.NewDefaultPageRequest(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"C"}, brandNames(page.Items))

	filtered, err := repo.List(ctx, types.NewQueryFilter("founding_year > ?", 1901))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, brandNames(filtered))
}
