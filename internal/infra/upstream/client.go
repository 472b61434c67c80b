// internal/infra/upstream/client.go
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"bell_cron_generator/internal/domain/schedule"
)

const defaultTimeout = 30 * time.Second

// Errors returned by Client.LoadDefinition. All of them are fatal for a run.
var (
	ErrUnreachable     = errors.New("failed to reach upstream")
	ErrNonText         = errors.New("got non-text response")
	ErrInvalidSchedule = errors.New("invalid response")
)

// Client fetches the schedule document from an HTTP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

var _ schedule.Source = (*Client)(nil)

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: url, httpClient: httpClient}
}

// LoadDefinition performs a single GET; there are no retries.
func (c *Client) LoadDefinition(ctx context.Context) (schedule.Definition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return schedule.Definition{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return schedule.Definition{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return schedule.Definition{}, fmt.Errorf("%w: %v", ErrNonText, err)
	}
	if !utf8.Valid(body) {
		return schedule.Definition{}, fmt.Errorf("%w: body is not valid UTF-8", ErrNonText)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return schedule.Definition{}, fmt.Errorf("%w: upstream returned status %d", ErrInvalidSchedule, resp.StatusCode)
	}

	var def schedule.Definition
	if err := json.Unmarshal(body, &def); err != nil {
		return schedule.Definition{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return def, nil
}
