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

package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomoncle/brandhub/database"
	"github.com/uptrace/bun"
)

const (
	BrandNameMaxLen    = 100
	BrandCountryMaxLen = 100
	BrandWebsiteMaxLen = 200
)

// Brand is a car manufacturer.
type Brand struct {
	bun.BaseModel `bun:"table:car_brands,alias:b"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	Name            string    `bun:"name,type:varchar(100),notnull" json:"name"`
	CountryOfOrigin *string   `bun:"country_of_origin,type:varchar(100)" json:"country_of_origin"`
	FoundingYear    int       `bun:"founding_year,notnull" json:"founding_year"`
	Website         *string   `bun:"website,type:varchar(200)" json:"website"`
	Active          bool      `bun:"active,notnull" json:"active"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
}

func (b *Brand) Identity() int64 {
	return b.ID
}

// Validate checks the column constraints so they fail before anything is
// staged.
func (b *Brand) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: brand name is required", ErrInvalidEntity)
	}
	if utf8.RuneCountInString(b.Name) > BrandNameMaxLen {
		return fmt.Errorf("%w: brand name exceeds %d characters", ErrInvalidEntity, BrandNameMaxLen)
	}
	if b.CountryOfOrigin != nil && utf8.RuneCountInString(*b.CountryOfOrigin) > BrandCountryMaxLen {
		return fmt.Errorf("%w: country of origin exceeds %d characters", ErrInvalidEntity, BrandCountryMaxLen)
	}
	if b.Website != nil && utf8.RuneCountInString(*b.Website) > BrandWebsiteMaxLen {
		return fmt.Errorf("%w: website exceeds %d characters", ErrInvalidEntity, BrandWebsiteMaxLen)
	}
	return nil
}

func (*Brand) Indexes() []database.IndexDefinition {
	return []database.IndexDefinition{
		{Name: "idx_car_brands_name", Columns: []string{"name"}},
		{Name: "idx_car_brands_country_of_origin", Columns: []string{"country_of_origin"}},
	}
}
