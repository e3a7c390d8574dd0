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

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/service"
	"github.com/tomoncle/brandhub/uow"
	"github.com/tomoncle/brandhub/utils"
	"github.com/uptrace/bun"
)

type routerOptions struct {
	db          func() *bun.DB
	logger      *logrus.Logger
	health      *Health
	serviceOpts []service.Option
	uowOpts     []uow.Option
}

// Option configures NewRouter.
type Option func(*routerOptions)

func WithLogger(l *logrus.Logger) Option {
	return func(o *routerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHealth replaces the readiness checks. By default the router pings db.
func WithHealth(h *Health) Option {
	return func(o *routerOptions) {
		if h != nil {
			o.health = h
		}
	}
}

// WithDBResolver makes every request look its pool up through resolve instead
// of using the db passed to NewRouter. The default readiness check pings the
// resolved pool too.
func WithDBResolver(resolve func() *bun.DB) Option {
	return func(o *routerOptions) {
		if resolve != nil {
			o.db = resolve
		}
	}
}

func WithServiceOptions(opts ...service.Option) Option {
	return func(o *routerOptions) {
		o.serviceOpts = append(o.serviceOpts, opts...)
	}
}

func WithUnitOfWorkOptions(opts ...uow.Option) Option {
	return func(o *routerOptions) {
		o.uowOpts = append(o.uowOpts, opts...)
	}
}

// NewRouter registers the brand, product, health and metrics routes over db.
func NewRouter(db *bun.DB, opts ...Option) http.Handler {
	o := &routerOptions{
		db:     func() *bun.DB { return db },
		logger: utils.GetLogger("HTTP"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.health == nil {
		o.health = NewHealth()
		o.health.Register("database", poolChecker(o.db))
	}

	factory := uow.NewFactoryFunc(o.db, o.uowOpts...)
	brands := NewBrandHandler(factory, o.logger, o.serviceOpts...)
	products := NewProductHandler(factory, o.logger, o.serviceOpts...)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(o.logger))
	r.Use(RequestLogging(o.logger))
	r.Use(PrometheusMetrics)

	r.Get("/health/live", o.health.Live)
	r.Get("/health/ready", o.health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/brands", func(r chi.Router) {
		r.Get("/", brands.List)
		r.Post("/", brands.Create)
		r.Post("/import", brands.Import)
		r.Get("/search", brands.Search)
		r.Get("/active", brands.Active)
		r.Get("/country/{country}", brands.ByCountry)
		r.Get("/founding-year", brands.FoundingYear)
		r.Get("/{id}", brands.Get)
		r.Put("/{id}", brands.Update)
		r.Delete("/{id}", brands.Delete)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/search", products.Search)
		r.Get("/in-stock", products.InStock)
		r.Get("/price-range", products.PriceRange)
		r.Get("/{id}", products.Get)
		r.Put("/{id}", products.Update)
		r.Delete("/{id}", products.Delete)
	})

	return r
}
