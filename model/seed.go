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
	"context"
	"time"

	"github.com/uptrace/bun"
)

var seedTime = time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// SeedBrandData returns the development brand catalog.
func SeedBrandData() []*Brand {
	brand := func(name, country string, year int, website string) *Brand {
		return &Brand{
			Name:            name,
			CountryOfOrigin: strPtr(country),
			FoundingYear:    year,
			Website:         strPtr(website),
			Active:          true,
			CreatedAt:       seedTime,
		}
	}
	return []*Brand{
		brand("Toyota", "Japan", 1937, "https://www.toyota.com"),
		brand("Ford", "United States", 1903, "https://www.ford.com"),
		brand("BMW", "Germany", 1916, "https://www.bmw.com"),
		brand("Mercedes-Benz", "Germany", 1926, "https://www.mercedes-benz.com"),
		brand("Ferrari", "Italy", 1939, "https://www.ferrari.com"),
		brand("Tesla", "United States", 2003, "https://www.tesla.com"),
		brand("Volkswagen", "Germany", 1937, "https://www.volkswagen.com"),
		brand("Honda", "Japan", 1948, "https://www.honda.com"),
		brand("Chevrolet", "United States", 1911, "https://www.chevrolet.com"),
		brand("Nissan", "Japan", 1933, "https://www.nissan.com"),
	}
}

// SeedProductData returns the development product catalog.
func SeedProductData() []*Product {
	return []*Product{
		{Name: "Laptop", Description: strPtr("High performance laptop"), Price: 129999, Stock: 10, CreatedAt: seedTime},
		{Name: "Mouse", Description: strPtr("Wireless mouse"), Price: 2999, Stock: 50, CreatedAt: seedTime},
		{Name: "Keyboard", Description: strPtr("Mechanical keyboard"), Price: 8999, Stock: 30, CreatedAt: seedTime},
	}
}

// SeedBrands inserts the brand catalog unless car_brands already has rows.
func SeedBrands(ctx context.Context, db bun.IDB) error {
	n, err := db.NewSelect().Model((*Brand)(nil)).Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	brands := SeedBrandData()
	_, err = db.NewInsert().Model(&brands).Exec(ctx)
	return err
}

// SeedProducts inserts the product catalog unless products already has rows.
func SeedProducts(ctx context.Context, db bun.IDB) error {
	n, err := db.NewSelect().Model((*Product)(nil)).Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	products := SeedProductData()
	_, err = db.NewInsert().Model(&products).Exec(ctx)
	return err
}
