package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"talant-web/internal/domain/listing"

	"go.uber.org/zap"
)

var (
	ErrTransport        = errors.New("backend request failed")
	ErrUnexpectedStatus = errors.New("backend returned unexpected status")
	ErrMalformedPayload = errors.New("backend returned malformed payload")
	ErrPhotoNotFound    = errors.New("photo not found")
)

const (
	maxErrorBody = 4096
	maxPhotoSize = 10 << 20
)

// StatusError is returned for non-2xx responses. It matches
// ErrUnexpectedStatus with errors.Is.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: status=%d body=%s", e.Endpoint, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

type Photo struct {
	ContentType string
	Data        []byte
}

type Client interface {
	SearchCandidates(ctx context.Context) ([]listing.Record, error)
	ListJobs(ctx context.Context) ([]listing.Record, error)
	GetPhoto(ctx context.Context, filename string) (Photo, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type candidatePayload struct {
	ID          flexString `json:"id"`
	Name        flexString `json:"name"`
	Job         flexString `json:"job"`
	Experience  flexString `json:"experience"`
	Age         flexString `json:"age"`
	Salary      flexString `json:"salary"`
	Skills      flexString `json:"skills"`
	City        flexString `json:"city"`
	JobType     flexString `json:"jobtype"`
	School      flexString `json:"school"`
	Description flexString `json:"description"`
	Photo       flexString `json:"photo"`
	Gender      flexString `json:"gender"`
	Telegram    flexString `json:"telegram"`
}

type searchResponse struct {
	Results *[]candidatePayload `json:"results"`
}

type jobPayload struct {
	ID          flexString `json:"id"`
	Title       flexString `json:"title"`
	Company     flexString `json:"company"`
	Salary      flexString `json:"salary"`
	Skills      flexString `json:"skills"`
	Description flexString `json:"description"`
	Location    flexString `json:"location"`
	JobType     flexString `json:"job_type"`
	Telegram    flexString `json:"telegram"`
}

func (c *httpClient) SearchCandidates(ctx context.Context) ([]listing.Record, error) {
	body, err := c.get(ctx, "/api/ankety/search", nil)
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if out.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedPayload)
	}

	records := make([]listing.Record, 0, len(*out.Results))
	for _, p := range *out.Results {
		records = append(records, listing.NewCandidate(listing.CandidateFields{
			ID:          string(p.ID),
			Name:        string(p.Name),
			Job:         string(p.Job),
			Experience:  string(p.Experience),
			Age:         string(p.Age),
			Salary:      string(p.Salary),
			Skills:      string(p.Skills),
			City:        string(p.City),
			JobType:     string(p.JobType),
			School:      string(p.School),
			Description: string(p.Description),
			Photo:       string(p.Photo),
			Gender:      string(p.Gender),
			Telegram:    string(p.Telegram),
		}))
	}
	return records, nil
}

func (c *httpClient) ListJobs(ctx context.Context) ([]listing.Record, error) {
	body, err := c.get(ctx, "/showjobs", nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []listing.Record{}, nil
	}

	var out []jobPayload
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	records := make([]listing.Record, 0, len(out))
	for _, p := range out {
		records = append(records, listing.NewJob(listing.JobFields{
			ID:          string(p.ID),
			Title:       string(p.Title),
			Company:     string(p.Company),
			Salary:      string(p.Salary),
			Skills:      string(p.Skills),
			Description: string(p.Description),
			Location:    string(p.Location),
			JobType:     string(p.JobType),
			Telegram:    string(p.Telegram),
		}))
	}
	return records, nil
}

func (c *httpClient) GetPhoto(ctx context.Context, filename string) (Photo, error) {
	q := url.Values{}
	q.Set("filename", filename)

	req, err := c.newRequest(ctx, "/api/get-photo", q)
	if err != nil {
		return Photo{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Photo{}, ErrPhotoNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Photo{}, c.statusError("/api/get-photo", resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoSize))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Photo{ContentType: ct, Data: data}, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil backend client")
	}
	req, err := c.newRequest(ctx, path, q)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("[Backend] request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(path, resp)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.logger.Debug("[Backend] fetched",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(b)),
		zap.Duration("latency", time.Since(start)),
	)
	return b, nil
}

func (c *httpClient) newRequest(ctx context.Context, path string, q url.Values) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}

func (c *httpClient) statusError(path string, resp *http.Response) error {
	rb, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	bodyStr := strings.TrimSpace(string(rb))
	c.logger.Warn("[Backend] unexpected status",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("body", bodyStr),
	)
	return &StatusError{Endpoint: path, Code: resp.StatusCode, Body: bodyStr}
}

var _ Client = (*httpClient)(nil)
