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

// Package model holds the persisted entities and registers them, with their
// development seed data, in the database model registry.
package model

import (
	"errors"
	"sync"

	"github.com/tomoncle/brandhub/database"
)

// ErrInvalidEntity is wrapped by every Validate failure.
var ErrInvalidEntity = errors.New("invalid entity")

var registerOnce sync.Once

// Register adds the entities and seeders to the database registry. It must
// run before database.InitDB so that migrations see the tables.
func Register() {
	registerOnce.Do(func() {
		database.RegisteredModel(database.NewModelAdapter((*Brand)(nil), 10))
		database.RegisteredModel(database.NewModelAdapter((*Product)(nil), 20))
		database.RegisterSeeder("car_brands", SeedBrands)
		database.RegisterSeeder("products", SeedProducts)
	})
}
