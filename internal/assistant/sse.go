package assistant

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

type sseSource struct {
	client *http.Client
	url    string
}

// NewSSESource returns a stream source reading Server-Sent Events from the
// backend's message endpoint.
func NewSSESource(baseURL string, client *http.Client) StreamSource {
	if client == nil {
		client = &http.Client{}
	}
	return &sseSource{client: client, url: strings.TrimRight(baseURL, "/")}
}

func (s *sseSource) Stream(ctx context.Context, req *model.StreamRequest, ch chan<- model.StreamEvent) error {
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
	httpReq.Header.Set("Accept", "text/event-stream")

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
	eventName := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			eventName = ""
			continue
		case strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		case !strings.HasPrefix(line, "data:"):
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		var ev model.StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			slog.Warn("Undecodable stream frame, failing the exchange", "error", err)
			ev = model.StreamEvent{Error: "could not decode stream frame"}
		}
		if eventName == "error" && ev.Error == "" {
			ev.Error = "stream error"
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
