// Package api is the HTTP client for the waterwatch server.
package api

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
	"sync"
	"time"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/dmitrijs2005/waterwatch/internal/server/series"
)

// ReadingPayload is the body of POST /data.
type ReadingPayload struct {
	Date     time.Time `json:"date"`
	PH       float64   `json:"pH"`
	TSS      float64   `json:"TSS"`
	TDS      float64   `json:"TDS"`
	BOD      float64   `json:"BOD"`
	COD      float64   `json:"COD"`
	Chloride float64   `json:"chloride"`
}

type ExportLink struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return ErrNotSignedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode}
		var msg struct {
			Message string   `json:"message"`
			Fields  []string `json:"fields"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			se.Message, se.Fields = msg.Message, msg.Fields
		} else {
			se.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Join(ErrUnauthorized, se)
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil, nil, false)
}

func (c *HTTPClient) Signup(ctx context.Context, name, email, password string) error {
	in := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/signup", nil, in, nil, false)
}

// Signin authenticates and keeps the token for later calls.
func (c *HTTPClient) Signin(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/signin", nil, in, &out, false); err != nil {
		return err
	}
	c.SetToken(out.Token)
	return nil
}

func (c *HTTPClient) Signout() {
	c.SetToken("")
}

func (c *HTTPClient) SubmitReading(ctx context.Context, r ReadingPayload) error {
	return c.do(ctx, http.MethodPost, "/data", nil, r, nil, true)
}

func (c *HTTPClient) Readings(ctx context.Context) ([]models.Reading, error) {
	var out []models.Reading
	if err := c.do(ctx, http.MethodGet, "/getdata", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Series fetches the dashboard view (daily, weekly, monthly, yearly).
func (c *HTTPClient) Series(ctx context.Context, view string) (*series.Series, error) {
	var out series.Series
	if err := c.do(ctx, http.MethodGet, "/series", url.Values{"view": {view}}, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Export(ctx context.Context, view string) (*ExportLink, error) {
	var out ExportLink
	if err := c.do(ctx, http.MethodPost, "/export", url.Values{"view": {view}}, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}
