// Package adminclient talks to the admin and storefront review endpoints over HTTP.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

const maxAttempts = 4

var (
	ErrNotFound   = errors.New("adminclient: not found")
	ErrBadRequest = errors.New("adminclient: bad request")
	ErrConflict   = errors.New("adminclient: conflict")
)

// Client is a rate limited HTTP client for the review API
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// New creates a client for the API at base, sending at most rps requests per second
func New(base string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ListParams filters the admin review listing
type ListParams struct {
	Query      string
	Statuses   []domain.ReviewStatus
	ProductIDs []string
	Limit      int
	Offset     int
}

// ReviewPage is one page of the admin review listing
type ReviewPage struct {
	Reviews []*domain.Review `json:"product_reviews" yaml:"product_reviews"`
	Count   int              `json:"count" yaml:"count"`
	Limit   int              `json:"limit" yaml:"limit"`
	Offset  int              `json:"offset" yaml:"offset"`
}

// RandomParams selects a random sample from the storefront endpoint. Nil quotas use the server defaults.
type RandomParams struct {
	Status     domain.ReviewStatus
	ProductIDs []string
	WithImages *int
	Total      *int
}

// RandomSample is the storefront random endpoint response
type RandomSample struct {
	Reviews                         []*domain.Review `json:"reviews" yaml:"reviews"`
	TotalAvailable                  int              `json:"totalAvailable" yaml:"total_available"`
	TotalWithImageMediaAvailable    int              `json:"totalWithImageMediaAvailable" yaml:"total_with_image_media_available"`
	TotalWithoutImageMediaAvailable int              `json:"totalWithoutImageMediaAvailable" yaml:"total_without_image_media_available"`
	WithImagesRequested             int              `json:"withImagesRequested" yaml:"with_images_requested"`
	TotalRequested                  int              `json:"totalRequested" yaml:"total_requested"`
	Returned                        int              `json:"returned" yaml:"returned"`
	SelectedWithImageMedia          int              `json:"selectedWithImageMedia" yaml:"selected_with_image_media"`
	SelectedWithoutImageMedia       int              `json:"selectedWithoutImageMedia" yaml:"selected_without_image_media"`
	Status                          string           `json:"status,omitempty" yaml:"status,omitempty"`
	Message                         string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// RefreshResult reports a stats refresh
type RefreshResult struct {
	Message    string   `json:"message" yaml:"message"`
	Refreshed  int      `json:"refreshed" yaml:"refreshed"`
	ProductIDs []string `json:"product_ids,omitempty" yaml:"product_ids,omitempty"`
}

// ListReviews fetches a page of reviews from the admin listing
func (c *Client) ListReviews(ctx context.Context, p ListParams) (*ReviewPage, error) {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	for _, s := range p.Statuses {
		q.Add("status", string(s))
	}
	for _, id := range p.ProductIDs {
		q.Add("product_id", id)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}

	var page ReviewPage
	if err := c.do(ctx, http.MethodGet, withQuery("/admin/product-reviews", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetReview fetches a single review
func (c *Client) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var out struct {
		Review *domain.Review `json:"product_review"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/product-reviews/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Review, nil
}

// UpdateStatus moderates a review
func (c *Client) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	var out struct {
		Review *domain.Review `json:"product_review"`
	}
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, "/admin/product-reviews/"+id.String()+"/status", body, &out); err != nil {
		return nil, err
	}
	return out.Review, nil
}

// UpdateVerified sets the verification flag of a review
func (c *Client) UpdateVerified(ctx context.Context, id uuid.UUID, verified bool) (*domain.Review, error) {
	var out struct {
		Review *domain.Review `json:"product_review"`
	}
	body := map[string]bool{"verified": verified}
	if err := c.do(ctx, http.MethodPut, "/admin/product-reviews/"+id.String()+"/verified", body, &out); err != nil {
		return nil, err
	}
	return out.Review, nil
}

// RefreshStats recomputes the stats of the given products, or of all of them when none are given
func (c *Client) RefreshStats(ctx context.Context, productIDs []string) (*RefreshResult, error) {
	var out RefreshResult
	body := map[string][]string{"product_ids": productIDs}
	if err := c.do(ctx, http.MethodPost, "/admin/product-review-stats", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Random draws a random sample from the storefront endpoint
func (c *Client) Random(ctx context.Context, p RandomParams) (*RandomSample, error) {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	for _, id := range p.ProductIDs {
		q.Add("product_id", id)
	}
	if p.WithImages != nil {
		q.Set("withImages", strconv.Itoa(*p.WithImages))
	}
	if p.Total != nil {
		q.Set("total", strconv.Itoa(*p.Total))
	}

	var out RandomSample
	if err := c.do(ctx, http.MethodGet, withQuery("/store/product-reviews/random", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// do sends a request with client-side rate limiting and decodes the JSON reply into out.
// 429 and transient 5xx replies are retried with backoff, honoring Retry-After.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := range maxAttempts {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if attempt < maxAttempts-1 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return lastErr
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil || resp.StatusCode == http.StatusNoContent {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			lastErr = statusError(resp)
			if wait == 0 {
				wait = backoff(attempt)
			}
			if attempt < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return statusError(resp)
		}
	}

	return lastErr
}

// statusError reads the {"error": ...} body of a failed reply and closes it
func statusError(resp *http.Response) error {
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
		if body.Message != "" {
			msg += ": " + body.Message
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return fmt.Errorf("adminclient: status %d: %s", resp.StatusCode, msg)
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 200 * time.Millisecond
}

// sleepCtx waits for d or returns false early if ctx is done
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
