package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"talant-web/internal/config"

	"github.com/gofiber/fiber/v3"
)

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ankety/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":1,"name":"Анна","job":"frontend","salary":150000,"skills":"React, CSS"}]}`))
	})
	mux.HandleFunc("/showjobs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"j1","title":"Go Developer","company":"Acme","job_type":"remote"}]`))
	})
	mux.HandleFunc("/api/get-photo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		App:     config.AppConfig{AppName: "talant-web", Environment: "test", HTTPPort: "0"},
		Backend: config.BackendConfig{BaseURL: baseURL, Timeout: 2 * time.Second},
		Listing: config.ListingConfig{PageSize: 10, SnapshotTTL: time.Minute, FilterDebounce: 10 * time.Millisecond},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	c, err := NewContainer(cfg, nil)
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return New(c)
}

func get(t *testing.T, a *App, target string) *http.Response {
	t.Helper()
	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestApp_PublicRoutes(t *testing.T) {
	a := newTestApp(t, testConfig(fakeBackend(t).URL))

	root := get(t, a, "/")
	if root.StatusCode != http.StatusFound || root.Header.Get(fiber.HeaderLocation) != "/candidates" {
		t.Fatalf("unexpected root redirect %d %q", root.StatusCode, root.Header.Get(fiber.HeaderLocation))
	}

	health := get(t, a, "/health")
	var sr struct {
		Data struct {
			Redis string `json:"redis"`
		} `json:"data"`
	}
	if err := json.NewDecoder(health.Body).Decode(&sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sr.Data.Redis != "disabled" {
		t.Fatalf("expected redis disabled, got %q", sr.Data.Redis)
	}

	page := get(t, a, "/candidates")
	if page.StatusCode != http.StatusOK || !strings.HasPrefix(page.Header.Get(fiber.HeaderContentType), "text/html") {
		t.Fatalf("unexpected page response %d %q", page.StatusCode, page.Header.Get(fiber.HeaderContentType))
	}
	if page.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}

	api := get(t, a, "/api/v1/listings/jobs")
	if api.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from api, got %d", api.StatusCode)
	}

	photo := get(t, a, "/photos/a.png")
	if photo.StatusCode != http.StatusOK {
		t.Fatalf("expected proxied photo, got %d", photo.StatusCode)
	}
}

func TestApp_SessionGuard(t *testing.T) {
	cfg := testConfig(fakeBackend(t).URL)
	cfg.Auth = config.AuthConfig{JWTSecret: "secret", LoginURL: "https://talant.example/login"}
	a := newTestApp(t, cfg)

	page := get(t, a, "/jobs")
	if page.StatusCode != http.StatusSeeOther || page.Header.Get(fiber.HeaderLocation) != cfg.Auth.LoginURL {
		t.Fatalf("expected login redirect, got %d %q", page.StatusCode, page.Header.Get(fiber.HeaderLocation))
	}
	if api := get(t, a, "/api/v1/listings/jobs"); api.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 from api, got %d", api.StatusCode)
	}
	if health := get(t, a, "/health"); health.StatusCode != http.StatusOK {
		t.Fatalf("health must stay public, got %d", health.StatusCode)
	}
}

func TestNewContainer_RequiresBackend(t *testing.T) {
	if _, err := NewContainer(testConfig(""), nil); err == nil {
		t.Fatalf("expected error for empty backend url")
	}
}

func TestListenAddr(t *testing.T) {
	cases := map[string]string{"8080": ":8080", ":9000": ":9000", " 3000 ": ":3000"}
	for in, want := range cases {
		got, err := ListenAddr(in)
		if err != nil || got != want {
			t.Fatalf("ListenAddr(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ListenAddr(" "); err == nil {
		t.Fatalf("expected error for empty port")
	}
}
