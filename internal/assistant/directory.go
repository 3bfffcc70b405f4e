package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

type directoryClient struct {
	client *http.Client
	url    string
}

// NewDirectory returns an HTTP client of the thread directory service.
func NewDirectory(baseURL string, client *http.Client) Directory {
	if client == nil {
		client = &http.Client{}
	}
	return &directoryClient{client: client, url: strings.TrimRight(baseURL, "/")}
}

func (d *directoryClient) threadURL(threadID string, suffix string) string {
	return d.url + "/api/v1/threads/" + url.PathEscape(threadID) + suffix
}

func (d *directoryClient) ListThreads(ctx context.Context, limit int) ([]model.Thread, error) {
	var threads []model.Thread
	endpoint := d.url + "/api/v1/threads?limit=" + strconv.Itoa(limit)
	if err := d.do(ctx, http.MethodGet, endpoint, nil, &threads); err != nil {
		return nil, fmt.Errorf("could not list threads: %w", err)
	}
	return threads, nil
}

func (d *directoryClient) GetThreadMessages(ctx context.Context, threadID string) ([]model.PersistedMessage, error) {
	var records []model.PersistedMessage
	if err := d.do(ctx, http.MethodGet, d.threadURL(threadID, "/messages"), nil, &records); err != nil {
		return nil, fmt.Errorf("could not get messages of thread %s: %w", threadID, err)
	}
	if records == nil {
		records = []model.PersistedMessage{}
	}
	return records, nil
}

func (d *directoryClient) RenameThread(ctx context.Context, threadID, title string) error {
	payload := map[string]string{"title": title}
	if err := d.do(ctx, http.MethodPut, d.threadURL(threadID, "/title"), payload, nil); err != nil {
		return fmt.Errorf("could not rename thread %s: %w", threadID, err)
	}
	return nil
}

func (d *directoryClient) DeleteThread(ctx context.Context, threadID string) error {
	if err := d.do(ctx, http.MethodDelete, d.threadURL(threadID, ""), nil, nil); err != nil {
		return fmt.Errorf("could not delete thread %s: %w", threadID, err)
	}
	return nil
}

func (d *directoryClient) FollowUps(ctx context.Context, threadID string) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := d.do(ctx, http.MethodGet, d.threadURL(threadID, "/follow-ups"), nil, &resp); err != nil {
		return nil, fmt.Errorf("could not get follow-ups of thread %s: %w", threadID, err)
	}
	return resp.Suggestions, nil
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (d *directoryClient) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("could not create http request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request failed: %v", app_errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: could not decode response: %v", app_errors.ErrUpstream, err)
	}
	return nil
}
