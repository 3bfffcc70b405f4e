// Package assistant holds the clients of the remote CRM assistant backend:
// the stream source that answers questions fragment by fragment, and the
// thread directory that lists, loads, renames and deletes conversations.
package assistant

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

// StreamSource streams one answer. Implementations send every frame to ch in
// arrival order and close ch before returning; no frame follows a terminal
// (Done or Error) frame.
type StreamSource interface {
	Stream(ctx context.Context, req *model.StreamRequest, ch chan<- model.StreamEvent) error
}

// Directory is the thread directory service.
type Directory interface {
	ListThreads(ctx context.Context, limit int) ([]model.Thread, error)
	GetThreadMessages(ctx context.Context, threadID string) ([]model.PersistedMessage, error)
	RenameThread(ctx context.Context, threadID, title string) error
	DeleteThread(ctx context.Context, threadID string) error
	FollowUps(ctx context.Context, threadID string) ([]string, error)
}

// statusError turns a non-2xx response into a sentinel-wrapped error.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", app_errors.ErrNotFound, msg)
	}
	return fmt.Errorf("%w: status %d: %s", app_errors.ErrUpstream, resp.StatusCode, msg)
}
