package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"talant-web/internal/delivery/http/middleware"
	"talant-web/internal/domain/listing"
	"talant-web/internal/render"
	"talant-web/internal/usecase"

	"github.com/PuerkitoBio/goquery"
	"github.com/gofiber/fiber/v3"
)

type stubBackend struct {
	candidates []listing.Record
	jobs       []listing.Record
	err        error
}

func (b *stubBackend) SearchCandidates(ctx context.Context) ([]listing.Record, error) {
	return b.candidates, b.err
}

func (b *stubBackend) ListJobs(ctx context.Context) ([]listing.Record, error) {
	return b.jobs, b.err
}

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func sampleBackend() *stubBackend {
	b := &stubBackend{}
	for i := 1; i <= 12; i++ {
		b.candidates = append(b.candidates, listing.NewCandidate(listing.CandidateFields{
			ID:     fmt.Sprintf("c%d", i),
			Name:   fmt.Sprintf("Кандидат %d", i),
			Job:    "backend",
			Salary: fmt.Sprintf("%d", i*10),
			Skills: "Go, SQL",
		}))
	}
	b.jobs = []listing.Record{
		listing.NewJob(listing.JobFields{ID: "j1", Title: "Go Developer", Company: "Acme", Salary: "200 000", JobType: "remote"}),
		listing.NewJob(listing.JobFields{ID: "j2", Title: "QA Engineer", Company: "Beta", JobType: "full"}),
	}
	return b
}

func newTestApp(t *testing.T, backend usecase.ListingBackend, refreshPerMinute int) *fiber.App {
	t.Helper()

	renderer, err := render.New(render.Options{})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	uc := usecase.NewListingUsecase(backend, nil, nil, nil, usecase.ListingOptions{PageSize: 10, RefreshPerMinute: refreshPerMinute}, nil)
	h := NewListingHandler(uc, renderer)

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	h.RegisterPageRoutes(app)
	h.RegisterRoutes(app.Group("/api/v1"))
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func decodeSemantic(t *testing.T, resp *http.Response) semanticResponse {
	t.Helper()
	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sr
}

func TestListingPage_RendersFirstPage(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/candidates", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if n := doc.Find(".person-card").Length(); n != 10 {
		t.Fatalf("expected 10 cards, got %d", n)
	}
	if got := doc.Find(".results-count").Text(); !strings.Contains(got, "12") {
		t.Fatalf("unexpected count %q", got)
	}
}

func TestListingPage_FilterAndSortQuery(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/candidates?min_salary=100&sort=salary_desc", nil))
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	var ids []string
	doc.Find(".person-card").Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("data-id", ""))
	})
	if strings.Join(ids, ",") != "c12,c11,c10" {
		t.Fatalf("unexpected order %v", ids)
	}
}

func TestListingPage_MalformedNumbersAreIgnored(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs?min_salary=lots&page=x", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListingPage_BackendFailureShowsError(t *testing.T) {
	app := newTestApp(t, &stubBackend{err: errors.New("connection refused")}, 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if doc.Find(".error-message").Length() != 1 {
		t.Fatalf("expected error block")
	}
	if strings.Contains(doc.Text(), "connection refused") {
		t.Fatalf("internal error leaked into page")
	}
}

func TestListingAPI_List(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/listings/candidates?page=2", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	sr := decodeSemantic(t, resp)
	var items []map[string]any
	if err := json.Unmarshal(sr.Data, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(items))
	}
	var meta struct {
		Total      int    `json:"total"`
		Page       int    `json:"page"`
		TotalPages int    `json:"total_pages"`
		LoadError  string `json:"load_error"`
	}
	if err := json.Unmarshal(sr.Meta, &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.Total != 12 || meta.Page != 2 || meta.TotalPages != 2 || meta.LoadError != "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestListingAPI_LoadErrorInMeta(t *testing.T) {
	app := newTestApp(t, &stubBackend{err: errors.New("boom")}, 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/listings/jobs", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	sr := decodeSemantic(t, resp)
	if !strings.Contains(string(sr.Meta), loadErrorMessage) {
		t.Fatalf("expected load error in meta, got %s", sr.Meta)
	}
	if strings.Contains(string(sr.Meta), "boom") {
		t.Fatalf("internal error leaked: %s", sr.Meta)
	}
}

func TestListingAPI_Errors(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	cases := []struct {
		name   string
		target string
		status int
	}{
		{name: "unknown kind", target: "/api/v1/listings/events", status: http.StatusNotFound},
		{name: "non numeric salary", target: "/api/v1/listings/jobs?min_salary=abc", status: http.StatusBadRequest},
		{name: "unknown sort", target: "/api/v1/listings/jobs?sort=random", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, tc.target, nil))
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			sr := decodeSemantic(t, resp)
			if sr.Status != tc.status {
				t.Fatalf("envelope status %d", sr.Status)
			}
		})
	}
}

func TestListingAPI_ValidationDetails(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 0)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/listings/jobs?min_salary=abc", nil))
	defer resp.Body.Close()
	sr := decodeSemantic(t, resp)

	var details map[string]string
	if err := json.Unmarshal(sr.Data, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details["min_salary"] != "number" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestListingAPI_RefreshThrottled(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 1)

	first := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/listings/jobs/refresh", nil))
	defer first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.StatusCode)
	}
	var out struct {
		Kind  string `json:"kind"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(decodeSemantic(t, first).Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Kind != "jobs" || out.Count != 2 {
		t.Fatalf("unexpected refresh result %+v", out)
	}

	second := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/v1/listings/jobs/refresh", nil))
	defer second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.StatusCode)
	}
}

func TestRefreshPage_RedirectsBack(t *testing.T) {
	app := newTestApp(t, sampleBackend(), 1)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/candidates/refresh", nil)
		req.Header.Set(fiber.HeaderReferer, "http://localhost:8080/candidates?q=go&page=2")
		resp := doRequest(t, app, req)
		resp.Body.Close()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("attempt %d: expected 303, got %d", i, resp.StatusCode)
		}
		if loc := resp.Header.Get(fiber.HeaderLocation); loc != "/candidates?q=go&page=2" {
			t.Fatalf("attempt %d: unexpected location %q", i, loc)
		}
	}
}

func TestBackTo(t *testing.T) {
	cases := []struct {
		referer string
		want    string
	}{
		{"", "/jobs"},
		{"http://h/jobs", "/jobs"},
		{"http://h/jobs?sort=date", "/jobs?sort=date"},
		{"http://h/candidates?q=x", "/jobs"},
		{"http://evil.example/jobs?q=1", "/jobs?q=1"},
		{"::", "/jobs"},
	}
	for _, tc := range cases {
		if got := backTo(listing.KindJobs, tc.referer); got != tc.want {
			t.Fatalf("backTo(%q) = %q, want %q", tc.referer, got, tc.want)
		}
	}
}
