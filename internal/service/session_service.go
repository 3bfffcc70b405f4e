package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"

	"zezin-crm/client/internal/assistant"
	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
	"zezin-crm/client/internal/repository"
)

// StreamErrorMarker replaces the content of an assistant message whose
// stream failed.
const StreamErrorMarker = "⚠ The answer could not be completed. Please send your question again."

const discardedExchangeNotice = "The assistant did not save that exchange, so it was discarded. Please try again."

// Options tunes a SessionService.
type Options struct {
	RevealTick       time.Duration
	RevealStep       int
	FollowUpDelay    time.Duration
	FollowUpMinPairs int
	ThreadListLimit  int
	TitleMaxWidth    int
	RequestTimeout   time.Duration
	// Now is the clock used to stamp locally merged threads.
	Now func() time.Time
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		RevealTick:       20 * time.Millisecond,
		RevealStep:       3,
		FollowUpDelay:    1500 * time.Millisecond,
		FollowUpMinPairs: 2,
		ThreadListLimit:  50,
		TitleMaxWidth:    40,
		RequestTimeout:   30 * time.Second,
		Now:              time.Now,
	}
}

func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.RevealTick <= 0 {
		o.RevealTick = def.RevealTick
	}
	if o.RevealStep < 1 {
		o.RevealStep = def.RevealStep
	}
	if o.FollowUpDelay < 0 {
		o.FollowUpDelay = 0
	}
	if o.FollowUpMinPairs < 1 {
		o.FollowUpMinPairs = def.FollowUpMinPairs
	}
	if o.ThreadListLimit < 1 {
		o.ThreadListLimit = def.ThreadListLimit
	}
	if o.TitleMaxWidth < 8 {
		o.TitleMaxWidth = def.TitleMaxWidth
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = def.RequestTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// streamTicket ties one exchange to the view it was started from.
type streamTicket struct {
	epoch       uint64
	userMsgID   string
	assistantID string
	userText    string
}

// SessionService is the session controller. It owns the active view, the
// thread list, the reveal clock and the single in-flight stream, and
// notifies subscribers whenever the view changes.
//
// Every view transition increments the epoch. Results of asynchronous work
// (thread loads, follow-up fetches, stream completions) are only applied to
// the view if the epoch they started under is still current.
type SessionService struct {
	dir      assistant.Directory
	slot     repository.SlotStore
	consumer *StreamConsumer
	gate     FollowUpGate
	opts     Options

	baseCtx context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	clock      *RevealClock
	state      model.ViewState
	activeID   string
	epoch      uint64
	persisted  []model.PersistedMessage
	inFlight   []model.Message
	threads    []model.Thread
	pending    map[string]bool
	tombstones map[string]bool
	followUps  []string
	lastErr    string
	notice     string
	ticking    bool
	slotGen    uint64

	// slotMu orders durable slot writes, which run outside mu.
	slotMu      sync.Mutex
	slotApplied uint64

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func NewSessionService(source assistant.StreamSource, dir assistant.Directory, slot repository.SlotStore, opts Options) *SessionService {
	opts.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewStreamConsumer(source)
	return &SessionService{
		dir:        dir,
		slot:       slot,
		consumer:   consumer,
		gate:       FollowUpGate{MinPairs: opts.FollowUpMinPairs, AfterStreamDelay: opts.FollowUpDelay},
		opts:       opts,
		baseCtx:    ctx,
		cancel:     cancel,
		clock:      NewRevealClock(opts.RevealStep, consumer.Active()),
		state:      model.StateNewConversation,
		pending:    make(map[string]bool),
		tombstones: make(map[string]bool),
		subs:       make(map[int]chan struct{}),
	}
}

// Start restores the remembered thread, if any, and loads the thread list.
// Both run concurrently; the first error is returned after both finish.
func (s *SessionService) Start(ctx context.Context) error {
	stored, err := s.slot.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("Could not read the active thread slot, starting a new conversation", "error", err)
		}
		stored = ""
	}

	var epoch uint64
	if stored != "" {
		s.mu.Lock()
		s.beginLoadLocked(stored)
		epoch = s.epoch
		s.mu.Unlock()
		s.notify()
		slog.Info("Restoring active thread", "thread_id", stored)
	}

	var g errgroup.Group
	g.Go(func() error { return s.RefreshThreads(ctx) })
	if stored != "" {
		g.Go(func() error { return s.loadThread(ctx, stored, epoch) })
	}
	return g.Wait()
}

// Close stops the reveal clock, outstanding streams and pending fetches.
func (s *SessionService) Close() {
	s.cancel()
}

// Send starts a new exchange in the active view. It returns as soon as the
// exchange is echoed; the answer streams in the background. Sending is
// refused while a thread is still loading.
func (s *SessionService) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: message cannot be empty", app_errors.ErrValidation)
	}

	s.mu.Lock()
	if s.state == model.StateLoadingThread {
		s.mu.Unlock()
		return fmt.Errorf("%w: the conversation is still loading", app_errors.ErrConflict)
	}
	if !s.consumer.TryAcquire() {
		s.mu.Unlock()
		return app_errors.ErrStreamInProgress
	}
	ticket := &streamTicket{
		epoch:       s.epoch,
		userMsgID:   uuid.NewString(),
		assistantID: uuid.NewString(),
		userText:    text,
	}
	contextID := s.activeID
	req := &model.StreamRequest{Message: text}
	if contextID != "" {
		req.ContextThreadID = &contextID
	}
	s.inFlight = append(s.inFlight,
		model.Message{ID: ticket.userMsgID, Role: model.RoleUser, Content: text},
		model.Message{ID: ticket.assistantID, Role: model.RoleAssistant},
	)
	s.followUps = nil
	s.lastErr = ""
	s.notice = ""
	s.clock.Start(ticket.assistantID)
	s.ensureTickerLocked()
	s.mu.Unlock()
	s.notify()

	slog.Info("Sending message", "context_thread_id", contextID, "message_id", ticket.userMsgID, "length", utf8.RuneCountInString(text))
	go func() {
		s.consumer.Run(s.baseCtx, req, StreamHandlers{
			OnFragment: func(fragment string) { s.onFragment(ticket, fragment) },
			OnComplete: func(threadID string) { s.onComplete(ticket, threadID) },
			OnFailure:  func(reason string) { s.onFailure(ticket, reason) },
		})
		// Watchers see the streaming flag drop.
		s.notify()
	}()
	return nil
}

// SelectThread switches the view to threadID and loads its messages.
func (s *SessionService) SelectThread(ctx context.Context, threadID string) error {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return fmt.Errorf("%w: thread id cannot be empty", app_errors.ErrValidation)
	}

	s.mu.Lock()
	if s.tombstones[threadID] {
		s.mu.Unlock()
		return fmt.Errorf("%w: thread %s was deleted", app_errors.ErrNotFound, threadID)
	}
	s.beginLoadLocked(threadID)
	epoch := s.epoch
	write := s.stageSlotLocked(threadID)
	s.mu.Unlock()
	s.applySlot(write)
	s.notify()

	return s.loadThread(ctx, threadID, epoch)
}

// RetryLoad repeats the message fetch of a thread whose last load failed.
func (s *SessionService) RetryLoad(ctx context.Context) error {
	s.mu.Lock()
	if s.state != model.StateLoadingThread {
		s.mu.Unlock()
		return fmt.Errorf("%w: no conversation is waiting to load", app_errors.ErrConflict)
	}
	if s.lastErr == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: the conversation is still loading", app_errors.ErrConflict)
	}
	threadID, epoch := s.activeID, s.epoch
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()

	return s.loadThread(ctx, threadID, epoch)
}

// NewConversation resets the view and forgets the remembered thread.
func (s *SessionService) NewConversation(_ context.Context) {
	s.mu.Lock()
	write := s.resetToNewLocked()
	s.mu.Unlock()
	s.applySlot(write)
	s.notify()
}

// RenameThread retitles a thread locally first and then on the directory.
// A directory failure is returned but the local title is kept.
func (s *SessionService) RenameThread(ctx context.Context, threadID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}

	s.mu.Lock()
	if s.tombstones[threadID] {
		s.mu.Unlock()
		return fmt.Errorf("%w: thread %s was deleted", app_errors.ErrNotFound, threadID)
	}
	s.threads, _ = RenameThread(s.threads, threadID, title)
	s.mu.Unlock()
	s.notify()

	if err := s.dir.RenameThread(ctx, threadID, title); err != nil {
		return fmt.Errorf("could not rename thread %s: %w", threadID, err)
	}
	slog.Info("Renamed thread", "thread_id", threadID)
	return nil
}

// DeleteThread deletes a thread on the directory and then drops it locally.
// Deleting the active thread resets the view to a new conversation.
func (s *SessionService) DeleteThread(ctx context.Context, threadID string) error {
	if err := s.dir.DeleteThread(ctx, threadID); err != nil {
		if !errors.Is(err, app_errors.ErrNotFound) {
			return fmt.Errorf("could not delete thread %s: %w", threadID, err)
		}
		slog.Debug("Thread already gone on the directory", "thread_id", threadID)
	}

	var write slotWrite
	s.mu.Lock()
	s.threads = RemoveThread(s.threads, threadID)
	s.tombstones[threadID] = true
	delete(s.pending, threadID)
	if s.activeID == threadID {
		write = s.resetToNewLocked()
	}
	s.mu.Unlock()
	s.applySlot(write)
	s.notify()

	slog.Info("Deleted thread", "thread_id", threadID)
	return nil
}

// RefreshThreads reconciles the local thread list with the directory.
func (s *SessionService) RefreshThreads(ctx context.Context) error {
	remote, err := s.dir.ListThreads(ctx, s.opts.ThreadListLimit)
	if err != nil {
		return fmt.Errorf("could not list threads: %w", err)
	}

	s.mu.Lock()
	s.threads = MergeRefresh(s.threads, remote,
		func(id string) bool { return s.pending[id] },
		func(id string) bool { return s.tombstones[id] },
	)
	for _, t := range remote {
		delete(s.pending, t.ID)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// SearchThreads fuzzy-matches query against thread titles, best match first.
// A blank query returns the whole list.
func (s *SessionService) SearchThreads(query string) []model.Thread {
	s.mu.Lock()
	threads := slices.Clone(s.threads)
	s.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nonNil(threads)
	}
	matches := fuzzy.FindFrom(query, threadTitles(threads))
	out := make([]model.Thread, 0, len(matches))
	for _, m := range matches {
		out = append(out, threads[m.Index])
	}
	return out
}

// View returns a snapshot of the session.
func (s *SessionService) View() model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionView{
		State:          s.state,
		ActiveThreadID: s.activeID,
		Persisted:      nonNil(slices.Clone(s.persisted)),
		InFlight:       nonNil(slices.Clone(s.inFlight)),
		Threads:        nonNil(slices.Clone(s.threads)),
		Cursor:         s.clock.Cursor(),
		Streaming:      s.consumer.Active().Load(),
		FollowUps:      nonNil(slices.Clone(s.followUps)),
		Error:          s.lastErr,
		Notice:         s.notice,
	}
}

// Subscribe returns a channel signalled after every view change. Signals
// coalesce: a slow reader sees one pending signal, not a backlog.
func (s *SessionService) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *SessionService) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *SessionService) onFragment(t *streamTicket, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(t.assistantID); i >= 0 {
		s.inFlight[i].Content += fragment
	}
}

func (s *SessionService) onComplete(t *streamTicket, threadID string) {
	s.mu.Lock()
	if threadID == "" {
		s.removeInFlightLocked(t.userMsgID, t.assistantID)
		s.clock.Release(t.assistantID)
		if t.epoch == s.epoch {
			s.notice = discardedExchangeNotice
		}
		s.mu.Unlock()
		s.notify()
		slog.Warn("Stream ended without a thread id, exchange discarded")
		return
	}

	if s.tombstones[threadID] {
		s.mu.Unlock()
		s.notify()
		slog.Info("Ignoring completion for a deleted thread", "thread_id", threadID)
		return
	}

	var created bool
	s.threads, created = MergeCompletion(s.threads, CompletionEvent{
		ThreadID:         threadID,
		FirstUserMessage: t.userText,
		At:               s.opts.Now(),
	}, s.opts.TitleMaxWidth)
	if created {
		s.pending[threadID] = true
	}

	fetch := false
	epoch := s.epoch
	var write slotWrite
	if t.epoch == s.epoch {
		if s.activeID != threadID {
			write = s.stageSlotLocked(threadID)
		}
		s.activeID = threadID
		s.state = model.StateActiveThread
		fetch = s.gate.ShouldFetch(s.pairCountLocked(threadID))
	}
	s.mu.Unlock()
	s.applySlot(write)
	s.notify()

	slog.Info("Stream completed", "thread_id", threadID, "new_thread", created)
	if fetch {
		s.scheduleFollowUps(threadID, epoch, s.gate.Delay(true))
	}
}

func (s *SessionService) onFailure(t *streamTicket, reason string) {
	s.mu.Lock()
	if i := s.indexLocked(t.assistantID); i >= 0 {
		s.inFlight[i].Content = StreamErrorMarker
	}
	s.clock.Release(t.assistantID)
	if t.epoch == s.epoch {
		s.lastErr = "The assistant could not answer: " + reason
	}
	s.mu.Unlock()
	s.notify()
	slog.Warn("Stream failed", "reason", reason)
}

// loadThread fetches the messages of threadID and applies them if the view
// is still the one that asked.
func (s *SessionService) loadThread(ctx context.Context, threadID string, epoch uint64) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	records, err := s.dir.GetThreadMessages(fetchCtx, threadID)
	cancel()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		slog.Debug("Discarding stale thread load", "thread_id", threadID)
		return nil
	}
	if err != nil {
		s.lastErr = "Could not load this conversation. Try again."
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("could not load thread %s: %w", threadID, err)
	}
	s.persisted = records
	s.state = model.StateActiveThread
	s.lastErr = ""
	fetch := s.gate.ShouldFetch(s.pairCountLocked(threadID))
	s.mu.Unlock()
	s.notify()

	if fetch {
		s.scheduleFollowUps(threadID, epoch, s.gate.Delay(false))
	}
	return nil
}

// scheduleFollowUps fetches suggestions for threadID after delay. Failures
// leave the suggestions empty.
func (s *SessionService) scheduleFollowUps(threadID string, epoch uint64, delay time.Duration) {
	run := func() {
		if s.baseCtx.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.RequestTimeout)
		defer cancel()

		suggestions, err := s.dir.FollowUps(ctx, threadID)
		if err != nil {
			slog.Debug("Follow-up suggestions unavailable", "thread_id", threadID, "error", err)
			return
		}

		s.mu.Lock()
		if s.epoch != epoch || s.activeID != threadID {
			s.mu.Unlock()
			return
		}
		s.followUps = suggestions
		s.mu.Unlock()
		s.notify()
	}

	if delay <= 0 {
		go run()
		return
	}
	time.AfterFunc(delay, run)
}

func (s *SessionService) ensureTickerLocked() {
	if s.ticking {
		return
	}
	s.ticking = true
	go s.runRevealClock()
}

func (s *SessionService) runRevealClock() {
	ticker := time.NewTicker(s.opts.RevealTick)
	defer ticker.Stop()
	for {
		select {
		case <-s.baseCtx.Done():
			s.mu.Lock()
			s.ticking = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			more := s.revealTick()
			s.notify()
			if !more {
				return
			}
		}
	}
}

// revealTick advances the clock once against the live length of its target.
func (s *SessionService) revealTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	length, present := 0, false
	if i := s.indexLocked(s.clock.Target()); i >= 0 {
		length = utf8.RuneCountInString(s.inFlight[i].Content)
		present = true
	}
	if s.clock.Advance(length, present) {
		return true
	}
	s.ticking = false
	return false
}

// beginLoadLocked switches the view to LoadingThread(threadID).
func (s *SessionService) beginLoadLocked(threadID string) {
	s.epoch++
	s.state = model.StateLoadingThread
	s.activeID = threadID
	s.clearViewLocked()
}

// resetToNewLocked switches the view to NewConversation. The returned slot
// clear must be applied once mu is released.
func (s *SessionService) resetToNewLocked() slotWrite {
	s.epoch++
	s.state = model.StateNewConversation
	s.activeID = ""
	s.clearViewLocked()
	return s.stageSlotLocked("")
}

func (s *SessionService) clearViewLocked() {
	s.persisted = nil
	s.inFlight = nil
	s.followUps = nil
	s.lastErr = ""
	s.notice = ""
}

// slotWrite is a durable slot update staged under mu. An empty threadID
// clears the slot; a zero gen is a no-op.
type slotWrite struct {
	gen      uint64
	threadID string
}

func (s *SessionService) stageSlotLocked(threadID string) slotWrite {
	s.slotGen++
	return slotWrite{gen: s.slotGen, threadID: threadID}
}

// applySlot writes w to the durable store unless a later staged write has
// already reached it.
func (s *SessionService) applySlot(w slotWrite) {
	if w.gen == 0 {
		return
	}
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if w.gen <= s.slotApplied {
		return
	}
	s.slotApplied = w.gen

	ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.RequestTimeout)
	defer cancel()
	if w.threadID == "" {
		if err := s.slot.Clear(ctx); err != nil {
			slog.Warn("Failed to clear the active thread slot", "error", err)
		}
		return
	}
	if err := s.slot.Set(ctx, w.threadID); err != nil {
		slog.Warn("Failed to remember the active thread", "thread_id", w.threadID, "error", err)
	}
}

func (s *SessionService) indexLocked(messageID string) int {
	if messageID == "" {
		return -1
	}
	return slices.IndexFunc(s.inFlight, func(m model.Message) bool { return m.ID == messageID })
}

func (s *SessionService) removeInFlightLocked(ids ...string) {
	s.inFlight = slices.DeleteFunc(s.inFlight, func(m model.Message) bool {
		return slices.Contains(ids, m.ID)
	})
}

// pairCountLocked counts the exchanges of threadID known to the session.
func (s *SessionService) pairCountLocked(threadID string) int {
	pairs := len(s.persisted)
	for _, m := range s.inFlight {
		if m.Role == model.RoleUser {
			pairs++
		}
	}
	if i := slices.IndexFunc(s.threads, func(t model.Thread) bool { return t.ID == threadID }); i >= 0 {
		pairs = max(pairs, s.threads[i].MessageCount)
	}
	return pairs
}

type threadTitles []model.Thread

func (t threadTitles) String(i int) string { return t[i].Title }
func (t threadTitles) Len() int            { return len(t) }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
