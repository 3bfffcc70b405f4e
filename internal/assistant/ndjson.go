package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

type ndjsonSource struct {
	client *http.Client
	url    string
}

// NewNDJSONSource returns a stream source for backends that answer with one
// JSON frame per line instead of Server-Sent Events.
func NewNDJSONSource(baseURL string, client *http.Client) StreamSource {
	if client == nil {
		client = &http.Client{}
	}
	return &ndjsonSource{client: client, url: strings.TrimRight(baseURL, "/")}
}

func (s *ndjsonSource) Stream(ctx context.Context, req *model.StreamRequest, ch chan<- model.StreamEvent) error {
	defer close(ch)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/api/v1/assistant/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", app_errors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev model.StreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			// A corrupt frame means the answer can no longer be trusted.
			ev = model.StreamEvent{Error: "could not decode stream frame"}
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		if ev.Done || ev.Error != "" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading stream: %v", app_errors.ErrUpstream, err)
	}
	return nil
}
