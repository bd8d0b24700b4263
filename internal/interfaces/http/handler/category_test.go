package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appexpense "github.com/fintrack/backend/internal/application/expense"
	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
)

func newCategoryTestRouter(repo *MockCategoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(uuid.New()))
	api := r.Group("/api/v1")
	NewCategoryHandler(appexpense.NewCategoryService(repo)).RegisterRoutes(api)
	return r
}

func mustCategory(t *testing.T, name string) *expense.Category {
	t.Helper()
	category, err := expense.NewCategory(name)
	require.NoError(t, err)
	return category
}

func TestCategoryHandlerCreate(t *testing.T) {
	t.Run("creates a category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		r := newCategoryTestRouter(repo)

		repo.On("ExistsByName", mock.Anything, "Travel").Return(false, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		body, _ := json.Marshal(gin.H{"name": "Travel"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Travel"`)
	})

	t.Run("duplicate name maps to 409", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		r := newCategoryTestRouter(repo)

		repo.On("ExistsByName", mock.Anything, "Travel").Return(true, nil)

		body, _ := json.Marshal(gin.H{"name": "Travel"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_ALREADY_EXISTS")
	})
}

func TestCategoryHandlerList(t *testing.T) {
	repo := new(MockCategoryRepository)
	r := newCategoryTestRouter(repo)

	repo.On("FindAll", mock.Anything, mock.Anything).
		Return([]expense.Category{*mustCategory(t, "Travel"), *mustCategory(t, "Meals")}, int64(2), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories?page=1&page_size=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
}

func TestCategoryHandlerGetByID(t *testing.T) {
	t.Run("returns the category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		r := newCategoryTestRouter(repo)

		category := mustCategory(t, "Travel")
		repo.On("FindByID", mock.Anything, category.ID).Return(category, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories/"+category.ID.String(), nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing category maps to 404", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		r := newCategoryTestRouter(repo)

		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed ID maps to 400", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		r := newCategoryTestRouter(repo)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/categories/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCategoryHandlerDeactivate(t *testing.T) {
	repo := new(MockCategoryRepository)
	r := newCategoryTestRouter(repo)

	category := mustCategory(t, "Travel")
	repo.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	repo.On("Update", mock.Anything, category).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/categories/"+category.ID.String(), nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, category.IsActive)
}
