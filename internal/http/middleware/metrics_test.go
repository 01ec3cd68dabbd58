package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yungbote/caddie-backend/internal/observability"
)

func TestMetricsRecordsRouteTemplatesAndSkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/rounds/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/rounds/1", "/api/rounds/2", "/healthcheck", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)

	if !strings.Contains(body, `caddie_http_requests_total{method="GET",route="/api/rounds/:id",status="200"} 2`) {
		t.Fatalf("missing route series:\n%s", body)
	}
	if !strings.Contains(body, `route="unmatched",status="404"`) {
		t.Fatalf("missing unmatched series:\n%s", body)
	}
	if strings.Contains(body, `route="/healthcheck"`) {
		t.Fatalf("probe route should not be recorded")
	}
}
