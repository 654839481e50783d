package category_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/category"
	"github.com/frahmantamala/catalog-connector/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	categories []category.CategoryResponse
	err        error
	lastAge    *int
	created    *category.CreateCategoryDTO
	deleted    string
}

func (m *mockService) GetAllCategories() ([]category.CategoryResponse, error) {
	return m.categories, m.err
}

func (m *mockService) CategoriesForAge(age int) ([]category.CategoryResponse, error) {
	m.lastAge = &age
	return m.categories, m.err
}

func (m *mockService) GetCategory(id string) (*category.CategoryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.categories {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, internal.ErrCategoryNotFound
}

func (m *mockService) Create(dto category.CreateCategoryDTO) (*category.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &dto
	return category.NewCategory(dto.ID, dto.Name, *dto.MinAge, dto.SortOrder), nil
}

func (m *mockService) Update(id string, dto category.UpdateCategoryDTO) (*category.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return category.NewCategory(id, *dto.Name, 0, 0), nil
}

func (m *mockService) Delete(id string) error {
	m.deleted = id
	return m.err
}

var _ = Describe("Handler", func() {
	var (
		svc    *mockService
		router *chi.Mux
	)

	BeforeEach(func() {
		svc = &mockService{
			categories: []category.CategoryResponse{
				{ID: "c1", Name: "Toddlers", MinAge: 1, SortOrder: 10},
			},
		}
		h := category.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), svc)

		router = chi.NewRouter()
		router.Get("/categories", h.GetCategories)
		router.Get("/categories/{id}", h.GetCategory)
		router.Post("/categories", h.CreateCategory)
		router.Put("/categories/{id}", h.UpdateCategory)
		router.Delete("/categories/{id}", h.DeleteCategory)
	})

	serve := func(method, target string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("GetCategories", func() {
		It("returns the categories wrapped in an object", func() {
			w := serve(http.MethodGet, "/categories", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp category.CategoriesResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Categories).To(HaveLen(1))
			Expect(resp.Categories[0].MinAge).To(Equal(1))
			Expect(svc.lastAge).To(BeNil())
		})

		It("filters by age when asked", func() {
			w := serve(http.MethodGet, "/categories?age=4", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(svc.lastAge).NotTo(BeNil())
			Expect(*svc.lastAge).To(Equal(4))
		})

		It("rejects a non-numeric age", func() {
			w := serve(http.MethodGet, "/categories?age=old", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps backend failures to 502", func() {
			svc.err = internal.NewExternalError("failed to fetch categories", errors.New("timeout"))
			w := serve(http.MethodGet, "/categories", nil)
			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeBackendRequestFailed)))
		})

		It("maps unknown failures to 500", func() {
			svc.err = errors.New("boom")
			w := serve(http.MethodGet, "/categories", nil)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GetCategory", func() {
		It("returns one category", func() {
			w := serve(http.MethodGet, "/categories/c1", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"id":"c1","name":"Toddlers","min_age":1,"sort_order":10}`))
		})

		It("returns 404 for an unknown id", func() {
			w := serve(http.MethodGet, "/categories/nope", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("CreateCategory", func() {
		It("creates and returns 201", func() {
			body, _ := json.Marshal(map[string]interface{}{"id": "c2", "name": "Teens", "min_age": 13, "sort_order": 40})
			w := serve(http.MethodPost, "/categories", body)
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(svc.created).NotTo(BeNil())
			Expect(svc.created.ID).To(Equal("c2"))
		})

		It("rejects a malformed body", func() {
			w := serve(http.MethodPost, "/categories", []byte("{"))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 409 for a duplicate id", func() {
			svc.err = internal.ErrDuplicateCategoryID
			body, _ := json.Marshal(map[string]interface{}{"id": "c1", "name": "Toddlers", "min_age": 1})
			w := serve(http.MethodPost, "/categories", body)
			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("UpdateCategory", func() {
		It("returns the updated category", func() {
			w := serve(http.MethodPut, "/categories/c1", []byte(`{"name":"Little ones"}`))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("Little ones"))
		})
	})

	Describe("DeleteCategory", func() {
		It("returns 204", func() {
			w := serve(http.MethodDelete, "/categories/c1", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(svc.deleted).To(Equal("c1"))
		})
	})
})
