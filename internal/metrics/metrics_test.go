package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammed-shakir/aperture-engine/internal/core/observability"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for ln := range strings.SplitSeq(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func scrape(t *testing.T, p *Provider) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	return rr.Body.String()
}

func TestProvider_RegistersStandardCollectors_AndBuildInfo(t *testing.T) {
	p, err := Init(Config{Build: BuildInfo{Version: "test", Revision: "r", Branch: "b", BuildDate: "now"}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "smoke"})
	p.Register(g)
	g.Set(42)

	if n := testutil.CollectAndCount(g); n == 0 {
		t.Fatalf("expected at least 1 sample from test_gauge, got %d", n)
	}

	body := scrape(t, p)
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go_goroutines in payload; got:\n%s", body)
	}
	if !strings.Contains(body, `app_build_info{`) {
		t.Fatalf("expected app_build_info in payload; got:\n%s", body)
	}
}

func TestProvider_ExposesEngineCollectors(t *testing.T) {
	p, err := Init(Config{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	observability.ObserveRasterize("mask", nil, 0.002)
	observability.ObserveRasterize("header", errors.New("boom"), 0.0001)
	observability.ObserveMaskPixels(800)
	observability.IncMaskCacheHit("lru")
	observability.IncMaskCacheMiss("redis")
	observability.ObserveHTTP("POST", "/v1/apertures/masks", 200, 0.01)

	body := scrape(t, p)
	assertHasMetricLine(t, body, "aperture_rasterize_total", `stage="mask"`, `outcome="ok"`)
	assertHasMetricLine(t, body, "aperture_rasterize_total", `stage="header"`, `outcome="error"`)
	assertHasMetricLine(t, body, "aperture_mask_cache_results_total", `tier="lru"`, `outcome="hit"`)
	assertHasMetricLine(t, body, "aperture_mask_cache_results_total", `tier="redis"`, `outcome="miss"`)
	assertHasMetricLine(t, body, "http_requests_total", `route="/v1/apertures/masks"`, `status="200"`)
	if !strings.Contains(body, "aperture_mask_pixels_bucket") {
		t.Fatalf("missing mask pixel histogram:\n%s", body)
	}
}
