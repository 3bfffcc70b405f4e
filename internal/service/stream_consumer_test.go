package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mock_assistant "zezin-crm/client/internal/assistant/mocks"
	"zezin-crm/client/internal/model"
	"zezin-crm/client/internal/service"
)

type recorder struct {
	fragments []string
	completed []string
	failures  []string
}

func (r *recorder) handlers() service.StreamHandlers {
	return service.StreamHandlers{
		OnFragment: func(text string) { r.fragments = append(r.fragments, text) },
		OnComplete: func(threadID string) { r.completed = append(r.completed, threadID) },
		OnFailure:  func(reason string) { r.failures = append(r.failures, reason) },
	}
}

// streamFrames makes the mock source emit frames, close the channel and return err.
func streamFrames(src *mock_assistant.MockStreamSource, err error, frames ...model.StreamEvent) {
	src.On("Stream", mock.Anything, mock.AnythingOfType("*model.StreamRequest"), mock.Anything).
		Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- model.StreamEvent)
			for _, f := range frames {
				ch <- f
			}
			close(ch)
		}).
		Return(err).Once()
}

func TestStreamConsumer_Run(t *testing.T) {
	req := &model.StreamRequest{Message: "How many open deals?"}

	t.Run("Success - fragments in order then thread id", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, nil,
			model.StreamEvent{Content: "There are "},
			model.StreamEvent{Content: "12 "},
			model.StreamEvent{Content: "open deals."},
			model.StreamEvent{Done: true, ThreadID: "thread-1"},
		)
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Equal(t, []string{"There are ", "12 ", "open deals."}, rec.fragments)
		assert.Equal(t, []string{"thread-1"}, rec.completed)
		assert.Empty(t, rec.failures)
		assert.False(t, consumer.Active().Load())
	})

	t.Run("Success - terminal frame carrying content", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, nil, model.StreamEvent{Content: "Done.", Done: true, ThreadID: "thread-2"})
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Equal(t, []string{"Done."}, rec.fragments)
		assert.Equal(t, []string{"thread-2"}, rec.completed)
	})

	t.Run("Failure - error frame", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, nil,
			model.StreamEvent{Content: "Partial"},
			model.StreamEvent{Error: "model overloaded"},
		)
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Equal(t, []string{"Partial"}, rec.fragments)
		assert.Empty(t, rec.completed)
		assert.Equal(t, []string{"model overloaded"}, rec.failures)
	})

	t.Run("Failure - transport error", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, errors.New("connection reset"), model.StreamEvent{Content: "Par"})
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Empty(t, rec.completed)
		require.Len(t, rec.failures, 1)
		assert.Contains(t, rec.failures[0], "connection reset")
	})

	t.Run("Clean close without terminal frame completes without thread id", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, nil, model.StreamEvent{Content: "Hello"})
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Equal(t, []string{""}, rec.completed)
		assert.Empty(t, rec.failures)
	})

	t.Run("Frames after the terminal frame are dropped", func(t *testing.T) {
		src := mock_assistant.NewMockStreamSource(t)
		streamFrames(src, nil,
			model.StreamEvent{Done: true, ThreadID: "thread-3"},
			model.StreamEvent{Content: "late"},
			model.StreamEvent{Error: "late error"},
		)
		consumer := service.NewStreamConsumer(src)
		rec := &recorder{}

		require.True(t, consumer.TryAcquire())
		consumer.Run(context.Background(), req, rec.handlers())

		assert.Empty(t, rec.fragments)
		assert.Equal(t, []string{"thread-3"}, rec.completed)
		assert.Empty(t, rec.failures)
	})
}

func TestStreamConsumer_TryAcquire(t *testing.T) {
	consumer := service.NewStreamConsumer(mock_assistant.NewMockStreamSource(t))

	require.True(t, consumer.TryAcquire())
	assert.False(t, consumer.TryAcquire(), "second exchange must be rejected while one is in flight")
	assert.True(t, consumer.Active().Load())
}
