package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

type wsSource struct {
	dialer *websocket.Dialer
	url    string
}

// NewWebSocketSource returns a stream source that sends the request as one
// JSON frame and reads the answer as JSON frames over a WebSocket.
func NewWebSocketSource(baseURL string) StreamSource {
	url := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return &wsSource{dialer: websocket.DefaultDialer, url: url + "/api/v1/assistant/ws"}
}

func (s *wsSource) Stream(ctx context.Context, req *model.StreamRequest, ch chan<- model.StreamEvent) error {
	defer close(ch)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			defer resp.Body.Close()
			return statusError(resp)
		}
		return fmt.Errorf("%w: dial failed: %v", app_errors.ErrUpstream, err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%w: could not send request: %v", app_errors.ErrUpstream, err)
	}

	for {
		var ev model.StreamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("%w: reading stream: %v", app_errors.ErrUpstream, err)
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
		if ev.Done || ev.Error != "" {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
