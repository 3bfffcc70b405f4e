package interfaces

import (
	"context"

	"zezin-crm/client/internal/model"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows the
// API layer and the CLI to be tested against mocks.

// SessionService defines the contract of the conversation session controller.
type SessionService interface {
	View() model.SessionView
	Send(ctx context.Context, message string) error
	SelectThread(ctx context.Context, threadID string) error
	RetryLoad(ctx context.Context) error
	NewConversation(ctx context.Context)
	RenameThread(ctx context.Context, threadID, title string) error
	DeleteThread(ctx context.Context, threadID string) error
	RefreshThreads(ctx context.Context) error
	SearchThreads(query string) []model.Thread
	Subscribe() (<-chan struct{}, func())
}
