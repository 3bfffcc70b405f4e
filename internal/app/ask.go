package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"zezin-crm/client/internal/config"
	"zezin-crm/client/internal/interfaces"
	"zezin-crm/client/internal/model"
)

// Ask sends one question in the remembered thread and prints the answer to
// out at the reveal rate, followed by the resulting thread id.
func Ask(question string, out io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	// Logs go to stderr so stdout carries only the answer.
	setupLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		return 1
	}
	defer app.Close()

	if err := app.Session.Start(ctx); err != nil {
		slog.Warn("Session started with errors", "error", err)
	}

	if err := ask(ctx, app.Session, question, out); err != nil {
		slog.Error("Question was not answered", "error", err)
		return 1
	}
	return 0
}

// ask drives one exchange and writes the revealed text as it grows.
func ask(ctx context.Context, session interfaces.SessionService, question string, out io.Writer) error {
	changes, unsubscribe := session.Subscribe()
	defer unsubscribe()

	if err := session.Send(ctx, question); err != nil {
		return err
	}

	target := ""
	if inFlight := session.View().InFlight; len(inFlight) > 0 {
		target = inFlight[len(inFlight)-1].ID
	}

	written := 0
	for {
		view := session.View()
		idx := -1
		for i, m := range view.InFlight {
			if m.ID == target {
				idx = i
				break
			}
		}
		if idx < 0 {
			fmt.Fprintln(out)
			if view.Notice != "" {
				return errors.New(view.Notice)
			}
			return errors.New("the exchange left the active view")
		}

		revealing := view.Cursor != nil && view.Cursor.TargetMessageID == target
		if view.Error == "" {
			shown := []rune(view.InFlight[idx].Content)
			if revealing {
				shown = []rune(model.ClipRunes(string(shown), view.Cursor.VisibleLength))
			}
			if len(shown) > written {
				fmt.Fprint(out, string(shown[written:]))
				written = len(shown)
			}
		}

		if !view.Streaming && !revealing {
			fmt.Fprintln(out)
			if view.Error != "" {
				return errors.New(view.Error)
			}
			fmt.Fprintf(out, "thread: %s\n", view.ActiveThreadID)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
		}
	}
}
