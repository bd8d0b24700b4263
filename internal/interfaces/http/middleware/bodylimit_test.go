package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("tiny"))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload",
			strings.NewReader(strings.Repeat("x", 64)))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestAPIToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(token string) *gin.Engine {
		r := gin.New()
		r.Use(APIToken(token))
		r.GET("/internal", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("matching token passes", func(t *testing.T) {
		r := newRouter("s3cret")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		req.Header.Set(APITokenHeader, "s3cret")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		r := newRouter("s3cret")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		req.Header.Set(APITokenHeader, "nope")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		r := newRouter("s3cret")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty configured token disables the check", func(t *testing.T) {
		r := newRouter("")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
