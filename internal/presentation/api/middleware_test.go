package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmeet/devmeet/internal/infrastructure/configs"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/ratelimiter"
)

func newCorsApp(origins, headers []string) *Application {
	cfg := configs.Config{}
	cfg.HTTP.AllowedOrigins = origins
	cfg.HTTP.AllowedHeaders = headers

	rl := ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 100})
	return NewApplication(cfg, nil, nil, nil, nil, logging.NewNop(), rl)
}

func corsRequest(app *Application, method, origin string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/api/rooms", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	app.enableCors(next).ServeHTTP(rec, req)
	return rec
}

func TestCorsEchoesConfiguredOrigin(t *testing.T) {
	app := newCorsApp([]string{"https://devmeet.example"}, nil)

	rec := corsRequest(app, "GET", "https://devmeet.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://devmeet.example" {
		t.Errorf("Allow-Origin = %q, want the configured origin", got)
	}
}

func TestCorsOmitsHeaderForUnknownOrigin(t *testing.T) {
	app := newCorsApp([]string{"https://devmeet.example"}, nil)

	rec := corsRequest(app, "GET", "https://evil.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for an origin outside the allow list", got)
	}
}

func TestCorsWildcardAllowsAnyOrigin(t *testing.T) {
	app := newCorsApp([]string{"*"}, nil)

	rec := corsRequest(app, "GET", "https://anywhere.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example" {
		t.Errorf("Allow-Origin = %q, want the request origin under wildcard config", got)
	}
}

func TestCorsJoinsAllowedHeaders(t *testing.T) {
	app := newCorsApp([]string{"*"}, []string{"Content-Type", "Authorization"})

	rec := corsRequest(app, "GET", "https://devmeet.example")
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Allow-Headers = %q", got)
	}
}

func TestCorsPreflightShortCircuits(t *testing.T) {
	app := newCorsApp([]string{"*"}, nil)

	rec := corsRequest(app, "OPTIONS", "https://devmeet.example")
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
}
