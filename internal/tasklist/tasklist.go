// Package tasklist holds the task-list page logic that goes beyond
// the generic engine: resolving the two well-known statuses, toggling
// a task's completion, and the client-side filter/ordering the page
// applies to the full task set.
package tasklist

import (
	"context"
	"sort"
	"strings"

	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/entity"
)

// Status names the toggle pivots on. Boards without both statuses
// simply have no completion toggle.
const (
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// BinaryStatuses are the resolved "In Progress"/"Done" status ids.
type BinaryStatuses struct {
	InProgressID int64
	DoneID       int64
}

// ResolveBinaryStatuses finds both well-known statuses in the loaded
// status list. ok is false when either is absent.
func ResolveBinaryStatuses(statuses []entity.Status) (BinaryStatuses, bool) {
	var bs BinaryStatuses
	for _, s := range statuses {
		switch s.Name {
		case StatusInProgress:
			bs.InProgressID = s.ID
		case StatusDone:
			bs.DoneID = s.ID
		}
	}
	return bs, bs.InProgressID != 0 && bs.DoneID != 0
}

// Done reports whether the task sits in the Done status.
func (bs BinaryStatuses) Done(t entity.Task) bool {
	return t.StatusID != nil && *t.StatusID == bs.DoneID
}

// ToggleCompletion flips a task between Done and In Progress with a
// silent update (no success notification for a background toggle).
// It is a no-op when either status is absent from the loaded list.
func ToggleCompletion(ctx context.Context, svc *client.Service, t entity.Task, statuses []entity.Status) bool {
	bs, ok := ResolveBinaryStatuses(statuses)
	if !ok {
		return false
	}
	next := bs.DoneID
	if bs.Done(t) {
		next = bs.InProgressID
	}
	t.StatusID = &next
	payload := t.Record()
	delete(payload, "id")
	return svc.UpdateSilent(ctx, t.ID, payload)
}

// Filter narrows tasks by an optional status id and a case-insensitive
// text query over title and description.
func Filter(tasks []entity.Task, query string, statusID int64) []entity.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if statusID != 0 && (t.StatusID == nil || *t.StatusID != statusID) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Order sorts by priority (missing priority counts as 0), keeping
// completed tasks grouped after the rest.
func Order(tasks []entity.Task, bs BinaryStatuses, ascending bool) []entity.Task {
	notDone := make([]entity.Task, 0, len(tasks))
	done := make([]entity.Task, 0)
	for _, t := range tasks {
		if bs.Done(t) {
			done = append(done, t)
		} else {
			notDone = append(notDone, t)
		}
	}
	byPriority := func(list []entity.Task) {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := priority(list[i]), priority(list[j])
			if ascending {
				return a < b
			}
			return a > b
		})
	}
	byPriority(notDone)
	byPriority(done)
	return append(notDone, done...)
}

func priority(t entity.Task) int64 {
	if t.Priority == nil {
		return 0
	}
	return *t.Priority
}
