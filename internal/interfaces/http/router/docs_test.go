package router

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	_ "github.com/Miraku17/Exam-Permit/docs"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestWithDocs(t *testing.T) {
	engine, _ := apiEngine(t)
	docsEngine := gin.New()
	docsEngine.Use(middleware.RequestID())
	NewRouter(docsEngine, WithDocs(
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: true}, nil),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)).Setup()

	w := serve(docsEngine, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	assert.Equal(t, "/api/v1", doc.BasePath)

	// every API route is documented with its method
	for _, r := range engine.Routes() {
		path, ok := strings.CutPrefix(r.Path, doc.BasePath)
		if !ok {
			continue
		}
		path = pathParam.ReplaceAllString(path, "{$1}")
		ops, found := doc.Paths[path]
		if assert.True(t, found, "undocumented path %s", path) {
			assert.Contains(t, ops, strings.ToLower(r.Method), path)
		}
	}

	t.Run("disabled docs answer not found", func(t *testing.T) {
		off := gin.New()
		NewRouter(off, WithDocs(
			middleware.SwaggerProtection(middleware.SwaggerConfig{}, nil),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)).Setup()
		assert.Equal(t, http.StatusNotFound, serve(off, http.MethodGet, "/swagger/index.html", "").Code)
	})

	t.Run("not mounted without the option", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/swagger/doc.json", "").Code)
	})
}
