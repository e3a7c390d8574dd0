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

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/brandhub/service"
	"github.com/tomoncle/brandhub/uow"
)

// BrandHandler serves /api/brands. Each request gets its own unit of work.
type BrandHandler struct {
	factory *uow.Factory
	opts    []service.Option
	logger  *logrus.Logger
}

func NewBrandHandler(factory *uow.Factory, logger *logrus.Logger, opts ...service.Option) *BrandHandler {
	return &BrandHandler{factory: factory, opts: opts, logger: logger}
}

func (h *BrandHandler) serve(fn func(svc *service.BrandService)) {
	u := h.factory.New()
	defer func() {
		if err := u.Close(); err != nil {
			h.logger.WithError(err).Warn("close unit of work")
		}
	}()
	fn(service.NewBrandService(u, h.opts...))
}

// List handles GET /api/brands. With page or page_size it answers one page.
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.BrandService) {
		if page, pageSize, ok := queryPage(r); ok {
			p, err := svc.Page(r.Context(), page, pageSize)
			if err != nil {
				WriteError(w, r, err, h.logger)
				return
			}
			WriteJSON(w, http.StatusOK, Response{Data: p})
			return
		}
		brands, err := svc.GetAll(r.Context())
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: brands})
	})
}

// Get handles GET /api/brands/{id}
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(func(svc *service.BrandService) {
		b, err := svc.GetByID(r.Context(), id)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if b == nil {
			writeNotFound(w, r, "brand")
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: b})
	})
}

// Search handles GET /api/brands/search?name=
func (h *BrandHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.BrandService) {
		brands, err := svc.SearchByName(r.Context(), r.URL.Query().Get("name"))
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: brands})
	})
}

func (h *BrandHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.serve(func(svc *service.BrandService) {
		brands, err := svc.GetActive(r.Context())
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: brands})
	})
}

// ByCountry handles GET /api/brands/country/{country}
func (h *BrandHandler) ByCountry(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	h.serve(func(svc *service.BrandService) {
		brands, err := svc.GetByCountry(r.Context(), country)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: brands})
	})
}

// FoundingYear handles GET /api/brands/founding-year?start=&end=
func (h *BrandHandler) FoundingYear(w http.ResponseWriter, r *http.Request) {
	start, ok := queryInt(w, r, "start")
	if !ok {
		return
	}
	end, ok := queryInt(w, r, "end")
	if !ok {
		return
	}
	h.serve(func(svc *service.BrandService) {
		brands, err := svc.GetByFoundingYearRange(r.Context(), int(start), int(end))
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusOK, Response{Data: brands})
	})
}

// Create handles POST /api/brands
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBrandInput
	if !decodeJSON(w, r, &input) {
		return
	}
	h.serve(func(svc *service.BrandService) {
		b, err := svc.Create(r.Context(), input)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/api/brands/%d", b.ID))
		WriteJSON(w, http.StatusCreated, Response{Data: b})
	})
}

// Import handles POST /api/brands/import. The brands are stored all or
// nothing.
func (h *BrandHandler) Import(w http.ResponseWriter, r *http.Request) {
	var inputs []service.CreateBrandInput
	if !decodeJSON(w, r, &inputs) {
		return
	}
	h.serve(func(svc *service.BrandService) {
		brands, err := svc.Import(r.Context(), inputs)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		WriteJSON(w, http.StatusCreated, Response{Data: brands})
	})
}

// Update handles PUT /api/brands/{id}
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input service.UpdateBrandInput
	if !decodeJSON(w, r, &input) {
		return
	}
	h.serve(func(svc *service.BrandService) {
		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if !updated {
			writeNotFound(w, r, "brand")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// Delete handles DELETE /api/brands/{id}
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.serve(func(svc *service.BrandService) {
		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			WriteError(w, r, err, h.logger)
			return
		}
		if !deleted {
			writeNotFound(w, r, "brand")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
