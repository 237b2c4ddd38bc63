// Package client is a Go client for the cvforge pipeline API. It drives the
// upload-then-generate flow and translates HTTP failures into a small error
// taxonomy so callers can tell terminal failures (fix the input, resubmit)
// from retryable ones.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
)

// Terminal errors require caller action; ErrServiceUnavailable is safe to
// retry with backoff since every server-side operation is idempotent.
var (
	ErrInvalidSubmission  = errors.New("invalid submission")
	ErrJobNotFound        = errors.New("job not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Client talks to a cvforge server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the server at baseURL (no trailing slash).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadResult is the server's answer to a successful upload.
type UploadResult struct {
	Message     string `json:"message"`
	JobID       string `json:"jobId"`
	CVURL       string `json:"cvUrl"`
	JobOfferURL string `json:"jobOfferUrl"`
}

// Upload submits a CV file and job-offer text, returning the job identifier
// that all later Generate calls correlate on.
func (c *Client) Upload(ctx context.Context, filename string, cv io.Reader, jobOffer string) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("cv", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, cv); err != nil {
		return nil, fmt.Errorf("read cv: %w", err)
	}
	if err := mw.WriteField("jobOffer", jobOffer); err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Generate invokes one generation variant for a previously uploaded job and
// returns the generated artifact's URL. Re-invocation is safe; the server
// overwrites the previous output for the same (job, variant).
func (c *Client) Generate(ctx context.Context, jobID string, variant jobkey.Variant) (string, error) {
	path := "/generate"
	if variant == jobkey.VariantFineTuned {
		path = "/generate-phase2"
	}

	body, err := json.Marshal(map[string]string{"jobId": jobID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		GeneratedCVURL string `json:"generatedCvUrl"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.GeneratedCVURL, nil
}

// JobStatus reports the embedding stage of an uploaded job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/jobs/"+jobID+"/status", nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Stage string `json:"stage"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.Stage, nil
}

// do executes the request and decodes a success body into out, or translates
// an error body into the client taxonomy.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrJobNotFound, apiErr.Message)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, apiErr.Message)
	default:
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, apiErr.Message)
	}
}
