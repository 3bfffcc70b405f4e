package service

import (
	"cmp"
	"slices"
	"time"

	"zezin-crm/client/internal/model"
)

// CompletionEvent reports a stream that completed with a thread id.
type CompletionEvent struct {
	ThreadID         string
	FirstUserMessage string
	At               time.Time
}

// MergeCompletion applies a completed exchange to the thread list without
// consulting the directory. An existing thread is bumped and moved to the
// front; an unseen id becomes a new thread at the front. The input slice is
// not modified. created reports whether a thread was synthesized.
func MergeCompletion(threads []model.Thread, ev CompletionEvent, titleWidth int) (merged []model.Thread, created bool) {
	merged = make([]model.Thread, 0, len(threads)+1)

	idx := slices.IndexFunc(threads, func(t model.Thread) bool { return t.ID == ev.ThreadID })
	var head model.Thread
	if idx >= 0 {
		head = threads[idx]
		head.LastUpdatedAt = ev.At
		head.MessageCount++
	} else {
		head = model.Thread{
			ID:            ev.ThreadID,
			Title:         SummarizeTitle(ev.FirstUserMessage, titleWidth),
			LastUpdatedAt: ev.At,
			MessageCount:  1,
		}
		created = true
	}

	merged = append(merged, head)
	for i, t := range threads {
		if i != idx {
			merged = append(merged, t)
		}
	}
	return merged, created
}

// RemoveThread drops threadID from the list.
func RemoveThread(threads []model.Thread, threadID string) []model.Thread {
	out := make([]model.Thread, 0, len(threads))
	for _, t := range threads {
		if t.ID != threadID {
			out = append(out, t)
		}
	}
	return out
}

// RenameThread sets the title of threadID. found is false when the id is not
// in the list, in which case the list is returned unchanged.
func RenameThread(threads []model.Thread, threadID, title string) (renamed []model.Thread, found bool) {
	renamed = slices.Clone(threads)
	for i := range renamed {
		if renamed[i].ID == threadID {
			renamed[i].Title = title
			return renamed, true
		}
	}
	return renamed, false
}

// MergeRefresh folds a full directory listing into the local list. Titles
// come from the directory; recency and counts never move backwards. Local
// threads missing from the listing survive only when keep reports them as
// created in this session, and ids for which drop is true never appear.
// Threads with equal recency keep their previous relative order.
func MergeRefresh(local, remote []model.Thread, keep, drop func(threadID string) bool) []model.Thread {
	localByID := make(map[string]model.Thread, len(local))
	rank := make(map[string]int, len(local)+len(remote))
	for i, t := range local {
		localByID[t.ID] = t
		rank[t.ID] = i
	}

	merged := make([]model.Thread, 0, len(remote)+len(local))
	seen := make(map[string]bool, len(remote))
	for i, r := range remote {
		if drop(r.ID) || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		if l, ok := localByID[r.ID]; ok {
			if l.LastUpdatedAt.After(r.LastUpdatedAt) {
				r.LastUpdatedAt = l.LastUpdatedAt
			}
			r.MessageCount = max(r.MessageCount, l.MessageCount)
		} else {
			rank[r.ID] = len(local) + i
		}
		merged = append(merged, r)
	}
	for _, l := range local {
		if !seen[l.ID] && keep(l.ID) && !drop(l.ID) {
			merged = append(merged, l)
		}
	}

	slices.SortStableFunc(merged, func(a, b model.Thread) int {
		if c := b.LastUpdatedAt.Compare(a.LastUpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(rank[a.ID], rank[b.ID])
	})
	return merged
}
