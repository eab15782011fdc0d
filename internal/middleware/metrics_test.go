package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/business-school/campus-api/internal/service"
)

func TestMetricsRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/api/v1/reports/standings", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/reports/standings", nil))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["path"] == "/api/v1/reports/standings" && labels["status"] == "200" {
				found = true
				assert.Equal(t, float64(1), metric.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found)
}

func TestMetricsWithoutServicePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type recorderStub struct {
	paths []string
}

func (r *recorderStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.paths = append(r.paths, method+" "+path+" "+strconv.Itoa(status))
}

func TestMetricsUsesRouteTemplateAndSkipsScrapes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := &recorderStub{}
	r := gin.New()
	r.Use(Metrics(recorder, "/metrics"))
	r.GET("/api/v1/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/events/1", "/api/v1/events/2", "/metrics", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{
		"GET /api/v1/events/:id 200",
		"GET /api/v1/events/:id 200",
		"GET unmatched 404",
	}, recorder.paths)
}
