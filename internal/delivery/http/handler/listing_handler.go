package handler

import (
	"bytes"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"talant-web/internal/delivery/http/dto"
	"talant-web/internal/delivery/http/middleware"
	"talant-web/internal/domain/listing"
	"talant-web/internal/pkg/response"
	"talant-web/internal/render"
	"talant-web/internal/search"
	"talant-web/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const loadErrorMessage = "listing source unavailable"

type listingQuery struct {
	Query     string `query:"q" validate:"max=200"`
	Category  string `query:"category" validate:"max=64"`
	Level     string `query:"level" validate:"max=64"`
	MinSalary string `query:"min_salary" validate:"omitempty,number,max=12"`
	Skills    string `query:"skills" validate:"max=500"`
	City      string `query:"city" validate:"max=100"`
	Format    string `query:"format" validate:"max=64"`
	Sort      string `query:"sort" validate:"omitempty,oneof=relevance salary_asc salary_desc experience date"`
	Page      string `query:"page" validate:"omitempty,number,max=9"`
	From      string `query:"from" validate:"omitempty,number,max=9"`
}

// params converts the raw query. Malformed numbers count as unset, so HTML
// pages never fail on a hand-edited URL.
func (q listingQuery) params() usecase.BrowseParams {
	return usecase.BrowseParams{
		Filter: search.Filter{
			Query:      strings.TrimSpace(q.Query),
			Category:   strings.TrimSpace(q.Category),
			Level:      strings.TrimSpace(q.Level),
			MinSalary:  atoiOrZero(q.MinSalary),
			Skills:     strings.TrimSpace(q.Skills),
			City:       strings.TrimSpace(q.City),
			WorkFormat: strings.TrimSpace(q.Format),
		},
		Sort: search.ParseSortKey(q.Sort),
		Page: atoiOrZero(q.Page),
		From: atoiOrZero(q.From),
	}
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

type ListingHandler struct {
	uc       usecase.ListingUsecase
	renderer *render.Renderer
	validate *validator.Validate
}

func NewListingHandler(uc usecase.ListingUsecase, renderer *render.Renderer) *ListingHandler {
	return &ListingHandler{uc: uc, renderer: renderer, validate: validator.New()}
}

// RegisterPageRoutes mounts the HTML pages and their retry actions.
func (h *ListingHandler) RegisterPageRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	for _, kind := range []listing.Kind{listing.KindCandidates, listing.KindJobs} {
		r.Get("/"+string(kind), h.page(kind))
		r.Post("/"+string(kind)+"/refresh", h.refreshPage(kind))
	}
}

// RegisterRoutes mounts the JSON API under an /api/v1 group.
func (h *ListingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/listings/:kind", h.List)
	r.Post("/listings/:kind/refresh", h.Refresh)
}

func (h *ListingHandler) page(kind listing.Kind) fiber.Handler {
	return func(c fiber.Ctx) error {
		var q listingQuery
		if err := c.Bind().Query(&q); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}

		res, err := h.uc.Browse(c.Context(), kind, q.params())
		if err != nil {
			return mapListingUsecaseError(err)
		}

		var buf bytes.Buffer
		if err := h.renderer.Page(&buf, res); err != nil {
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

func (h *ListingHandler) refreshPage(kind listing.Kind) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := h.uc.Refresh(c.Context(), kind); err != nil && !errors.Is(err, usecase.ErrRefreshThrottled) {
			return mapListingUsecaseError(err)
		}
		return c.Redirect().Status(fiber.StatusSeeOther).To(backTo(kind, c.Get(fiber.HeaderReferer)))
	}
}

// backTo returns the referring page of the same listing, keeping its query,
// or the listing root.
func backTo(kind listing.Kind, referer string) string {
	root := "/" + string(kind)
	u, err := url.Parse(referer)
	if err != nil || u.Path != root {
		return root
	}
	if u.RawQuery == "" {
		return root
	}
	return root + "?" + u.RawQuery
}

func (h *ListingHandler) List(c fiber.Ctx) error {
	kind, err := listing.ParseKind(c.Params("kind"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown listing", nil, err)
	}

	var q listingQuery
	if err := c.Bind().Query(&q); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := h.validate.Struct(q); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid query", validationDetails(err), err)
	}

	res, err := h.uc.Browse(c.Context(), kind, q.params())
	if err != nil {
		return mapListingUsecaseError(err)
	}

	items := make([]dto.ListingItemResponse, 0, len(res.Items))
	for _, r := range res.Items {
		items = append(items, toListingItem(r))
	}

	meta := dto.ListingMetaResponse{
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
		Sort:       string(res.Sort),
		LoadedAt:   timePtr(res.LoadedAt),
	}
	if res.LoadErr != nil {
		meta.LoadError = loadErrorMessage
	}
	return response.SuccessWithMeta(c, fiber.StatusOK, "success", items, meta)
}

func (h *ListingHandler) Refresh(c fiber.Ctx) error {
	kind, err := listing.ParseKind(c.Params("kind"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown listing", nil, err)
	}

	res, err := h.uc.Refresh(c.Context(), kind)
	if err != nil {
		return mapListingUsecaseError(err)
	}

	out := dto.RefreshResponse{Kind: string(res.Kind), Count: res.Count, LoadedAt: timePtr(res.LoadedAt)}
	if res.LoadErr != nil {
		out.LoadError = loadErrorMessage
	}
	return response.Success(c, fiber.StatusOK, "success", out)
}

func toListingItem(r listing.Record) dto.ListingItemResponse {
	out := dto.ListingItemResponse{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Name:        r.Name,
		Title:       r.Title,
		Category:    r.Category,
		Company:     r.Company,
		Level:       r.Level,
		Experience:  r.Experience,
		Description: r.Description,
		SalaryText:  r.SalaryText,
		Salary:      r.Salary,
		Skills:      r.Skills,
		City:        r.City,
		WorkFormat:  r.WorkFormat,
		Education:   r.Education,
		Gender:      r.Gender,
		Age:         r.Age,
		TelegramURL: r.TelegramURL(),
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if r.Photo != "" {
		out.PhotoURL = "/photos/" + url.PathEscape(r.Photo)
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[queryFieldName(fe.StructField())] = fe.Tag()
	}
	return out
}

var queryFieldNames = map[string]string{
	"Query":     "q",
	"Category":  "category",
	"Level":     "level",
	"MinSalary": "min_salary",
	"Skills":    "skills",
	"City":      "city",
	"Format":    "format",
	"Sort":      "sort",
	"Page":      "page",
	"From":      "from",
}

func queryFieldName(field string) string {
	if n, ok := queryFieldNames[field]; ok {
		return n
	}
	return field
}

func mapListingUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnknownSource):
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown listing", nil, err)
	case errors.Is(err, usecase.ErrRefreshThrottled):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Refresh throttled, try again later", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
