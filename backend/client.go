// Package backend is the client of the ministry REST API that owns every
// questionnaire, sample, quota and location record.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/model"
)

const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// StatusOf returns the HTTP status carried by err, or 0 when err did not come
// from a backend answer.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	Questionnaires *Resource[model.Questionnaire]
	Samples        *Resource[model.Sample]
	SampleGroups   *Resource[model.SampleGroup]
	Farms          *Resource[model.Farm]
	Quotas         *Resource[model.Quota]
	Users          *Resource[model.User]
	Themes         *Resource[model.Theme]
	Locations      *Resource[model.Location]
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
	c.Questionnaires = NewResource[model.Questionnaire](c, "/questionnaires")
	c.Samples = NewResource[model.Sample](c, "/samples")
	c.SampleGroups = NewResource[model.SampleGroup](c, "/SampleGroups")
	c.Farms = NewResource[model.Farm](c, "/farms")
	c.Quotas = NewResource[model.Quota](c, "/Quotas")
	c.Users = NewResource[model.User](c, "/users")
	c.Themes = NewResource[model.Theme](c, "/themes")
	c.Locations = NewResource[model.Location](c, "/locations")
	return c
}

// Health reports whether the backend answers its health check.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// do sends in as JSON, when not nil, and decodes the answer into out, when
// not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	data, err := c.raw(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, path)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s", method, path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "preparing backend request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(log.Fields{
			"method":  method,
			"path":    path,
			"status":  resp.StatusCode,
			"elapsed": time.Since(start).String(),
		}).Debug("backend call")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(msg)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s", method, path)
	}
	return data, nil
}
