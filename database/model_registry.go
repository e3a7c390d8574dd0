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

package database

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/uptrace/bun"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a table model taking part in migrations. Instance returns a
// Bun model pointer and Priority orders table creation, lower first.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// IndexDefinition names a secondary index over one or more columns.
type IndexDefinition struct {
	Name    string
	Columns []string
}

// IndexedModel is implemented by models that declare secondary indexes.
type IndexedModel interface {
	Indexes() []IndexDefinition
}

// Seeder fills a freshly migrated database with initial rows. It runs inside
// the migration transaction.
type Seeder func(ctx context.Context, db bun.IDB) error

// NamedSeeder is a Seeder registered under a name.
type NamedSeeder struct {
	name string
	run  Seeder
}

// ModelRegistry stores SQL models and seeders in a deterministic order.
type ModelRegistry interface {
	Register(model SQLModel)
	RegisterSeeder(name string, seeder Seeder)
	Models() []SQLModel
	Seeders() []NamedSeeder
}

type modelRegistry struct {
	models  []SQLModel
	seeders []NamedSeeder
	mutex   sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, m := range r.models {
		if modelName(m.Instance()) == modelName(model.Instance()) {
			return
		}
	}
	r.models = append(r.models, model)
}

func (r *modelRegistry) RegisterSeeder(name string, seeder Seeder) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, s := range r.seeders {
		if s.name == name {
			return
		}
	}
	r.seeders = append(r.seeders, NamedSeeder{name: name, run: seeder})
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *modelRegistry) Seeders() []NamedSeeder {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]NamedSeeder, len(r.seeders))
	copy(result, r.seeders)
	return result
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct instance and priority into an SQLModel.
func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{
		instance: instance,
		priority: priority,
	}
}

func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

func (a *ModelAdapter) Priority() int {
	return a.priority
}

// GetRegisteredModels returns all registered models by ascending priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry. Registering the same
// model type twice is a no-op.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisterSeeder adds a named seeder. Seeders run in registration order.
func RegisterSeeder(name string, seeder Seeder) {
	defaultRegistry.RegisterSeeder(name, seeder)
}

func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	modelInstances := make([]interface{}, len(models))
	for i, model := range models {
		modelInstances[i] = model.Instance()
	}
	return modelInstances
}

// modelName is the Go type name behind a model pointer.
func modelName(model interface{}) string {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
