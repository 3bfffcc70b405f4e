package model

import (
	"time"
	"unicode/utf8"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transient chat bubble of the active view.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Thread stores metadata about one persisted conversation.
type Thread struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	MessageCount  int       `json:"message_count"`
}

// PersistedMessage is the durable pair-form of one exchange, as returned by
// the thread directory.
type PersistedMessage struct {
	ID            string    `json:"id"`
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	Title         *string   `json:"title,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	ThreadID      *string   `json:"thread_id,omitempty"`
}

// StreamCursor tracks how much of the streaming message is visible.
type StreamCursor struct {
	TargetMessageID string `json:"target_message_id"`
	TrueLength      int    `json:"true_length"`
	VisibleLength   int    `json:"visible_length"`
}

// StreamRequest is the body sent to the stream source.
type StreamRequest struct {
	Message         string  `json:"message"`
	ContextThreadID *string `json:"context_thread_id"`
}

// StreamEvent is the structure for a single frame of a streamed answer.
// A frame carries either a fragment, the terminal thread id (Done) or an error.
type StreamEvent struct {
	Content  string `json:"content,omitempty"`
	Done     bool   `json:"done,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ViewState is the state of the session controller.
type ViewState string

const (
	StateNewConversation ViewState = "new_conversation"
	StateLoadingThread   ViewState = "loading_thread"
	StateActiveThread    ViewState = "active_thread"
)

// SessionView is an immutable snapshot of everything the presentation layer renders.
type SessionView struct {
	State          ViewState          `json:"state"`
	ActiveThreadID string             `json:"active_thread_id,omitempty"`
	Persisted      []PersistedMessage `json:"persisted"`
	InFlight       []Message          `json:"in_flight"`
	Threads        []Thread           `json:"threads"`
	Cursor         *StreamCursor      `json:"cursor,omitempty"`
	Streaming      bool               `json:"streaming"`
	FollowUps      []string           `json:"follow_ups"`
	Error          string             `json:"error,omitempty"`
	Notice         string             `json:"notice,omitempty"`
}

// Messages flattens the view into render order: persisted pairs first, then
// in-flight messages. The cursor target is clipped to its visible length.
func (v SessionView) Messages() []Message {
	out := make([]Message, 0, 2*len(v.Persisted)+len(v.InFlight))
	for _, rec := range v.Persisted {
		out = append(out,
			Message{ID: rec.ID + ":user", Role: RoleUser, Content: rec.UserText},
			Message{ID: rec.ID + ":assistant", Role: RoleAssistant, Content: rec.AssistantText},
		)
	}
	for _, msg := range v.InFlight {
		if v.Cursor != nil && msg.ID == v.Cursor.TargetMessageID {
			msg.Content = ClipRunes(msg.Content, v.Cursor.VisibleLength)
		}
		out = append(out, msg)
	}
	return out
}

// ClipRunes returns the first n runes of s.
func ClipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
