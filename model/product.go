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
	ProductNameMaxLen        = 200
	ProductDescriptionMaxLen = 1000
)

// Product is a catalog item. Price is held in cents.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,type:varchar(200),notnull" json:"name"`
	Description *string   `bun:"description,type:varchar(1000)" json:"description"`
	Price       int64     `bun:"price,notnull" json:"price"`
	Stock       int       `bun:"stock,notnull" json:"stock"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

func (p *Product) Identity() int64 {
	return p.ID
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidEntity)
	}
	if utf8.RuneCountInString(p.Name) > ProductNameMaxLen {
		return fmt.Errorf("%w: product name exceeds %d characters", ErrInvalidEntity, ProductNameMaxLen)
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > ProductDescriptionMaxLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidEntity, ProductDescriptionMaxLen)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidEntity)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidEntity)
	}
	return nil
}

func (*Product) Indexes() []database.IndexDefinition {
	return []database.IndexDefinition{
		{Name: "idx_products_name", Columns: []string{"name"}},
		{Name: "idx_products_price", Columns: []string{"price"}},
	}
}
