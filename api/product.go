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
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/service"
	"github.com/tomoncle/brandhub/uow"
)

// ProductHandler serves /api/products. Prices are integer cents.
type ProductHandler struct {
	factory *uow.Factory
	opts    []service.Option
	logger  *logrus.Logger
}

func NewProductHandler(factory *uow.Factory, logger *logrus.Logger, opts ...service.Option) *ProductHandler {
	return &ProductHandler{factory: factory, opts: opts, logger: logger}
}

func (h *ProductHandler) serve(fn func(svc *service.ProductService)) {
	u := h.factory.New()
	defer func() {
		if err := u.Close(); err != nil {
			h.logger.WithError(err).Warn("close unit of work")
		}
	}()
	fn(service.NewProductService(u, h.opts...))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.ProductService) {
		if page, pageSize, ok := queryPage(r); ok {
			p, err := svc.Page(r.Context(), page, pageSize)
			if err != nil {
				WriteError(w, r, err, h.logger)
				return
			}
			WriteJSON(w, http.StatusOK, Response{Data: p})
			return
		}
		products, err := svc.GetAll(r.Context())
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: products})
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(func(svc *service.ProductService) {
		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if p == nil {
			writeNotFound(w, r, "product")
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: p})
	})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.ProductService) {
		products, err := svc.SearchByName(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: products})
	})
}

func (h *ProductHandler) InStock(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.ProductService) {
		products, err := svc.GetInStock(r.Context())
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: products})
	})
}

// PriceRange handles GET /api/products/price-range?min=&max=
func (h *ProductHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	minPrice, ok := queryInt(w, r, "min")
	if !ok {
		return
	}
	maxPrice, ok := queryInt(w, r, "max")
	if !ok {
		return
	}
	h.serve(func(svc *service.ProductService) {
		products, err := svc.GetByPriceRange(r.Context(), minPrice, maxPrice)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: products})
	})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	h.serve(func(svc *service.ProductService) {
		p, err := svc.Create(r.Context(), input)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/api/products/%d", p.ID))
		WriteJSON(w, http.StatusCreated, Response{Data: p})
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input service.UpdateProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	h.serve(func(svc *service.ProductService) {
		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if !updated {
			writeNotFound(w, r, "product")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(func(svc *service.ProductService) {
		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if !deleted {
			writeNotFound(w, r, "product")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
