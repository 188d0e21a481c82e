package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/entity"
	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/search"
)

// recordingNotifier captures alerts and answers confirmations from a
// scripted value.
type recordingNotifier struct {
	alerts   []string
	confirms []string
	answer   bool
}

func (n *recordingNotifier) Alertf(format string, args ...any) {
	n.alerts = append(n.alerts, fmt.Sprintf(format, args...))
}

func (n *recordingNotifier) Confirm(prompt string) bool {
	n.confirms = append(n.confirms, prompt)
	return n.answer
}

type capturedRequest struct {
	method string
	path   string
	body   map[string]any
}

// newAPI spins up a fake entity API answering every route, recording
// requests, and returns a service registry wired to it.
func newAPI(t *testing.T, status int, response any) (*Registry, *recordingNotifier, *[]capturedRequest) {
	t.Helper()
	var reqs []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cr := capturedRequest{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&cr.body)
		}
		reqs = append(reqs, cr)
		assert.NotEmpty(t, r.Header.Get("X-Correlation-ID"))
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)

	notify := &recordingNotifier{answer: true}
	reg := NewRegistry(entity.NewRegistry(), Options{
		BaseURL:  srv.URL,
		Notifier: notify,
	})
	return reg, notify, &reqs
}

func TestSearchCachesResults(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusOK, search.Response{
		Items:     []map[string]any{{"id": float64(1), "title": "a"}},
		PageCount: 3,
	})
	svc := reg.Service(meta.KeyTask)

	p := search.Defaults()
	res := svc.Search(context.Background(), p)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, int64(1), res.Items[0].ID())

	// Second identical query is served from cache.
	svc.Search(context.Background(), p)
	assert.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodPost, (*reqs)[0].method)
	assert.Equal(t, "/task/search", (*reqs)[0].path)
	assert.Empty(t, notify.alerts)
}

func TestSearchFailureAlertsAndDegrades(t *testing.T) {
	reg, notify, _ := newAPI(t, http.StatusInternalServerError, nil)
	res := reg.Service(meta.KeyTask).Search(context.Background(), search.Defaults())
	assert.Empty(t, res.Items)
	assert.Zero(t, res.PageCount)
	require.Len(t, notify.alerts, 1)
	assert.Contains(t, notify.alerts[0], "Failed to search for tasks")
}

func TestGetZeroIDNeverFetches(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusOK, nil)
	svc := reg.Service(meta.KeyStatus)
	assert.Nil(t, svc.Get(context.Background(), 0))
	assert.Nil(t, svc.Get(context.Background(), -4))
	assert.Empty(t, *reqs)
	assert.Empty(t, notify.alerts)
}

func TestGet(t *testing.T) {
	reg, _, reqs := newAPI(t, http.StatusOK, map[string]any{"id": 5, "name": "Done"})
	svc := reg.Service(meta.KeyStatus)

	rec := svc.Get(context.Background(), 5)
	require.NotNil(t, rec)
	assert.Equal(t, int64(5), rec.ID())
	assert.Equal(t, "/status/5", (*reqs)[0].path)

	svc.Get(context.Background(), 5)
	assert.Len(t, *reqs, 1)
}

func TestGetFailureAlertsAndReturnsNil(t *testing.T) {
	reg, notify, _ := newAPI(t, http.StatusNotFound, nil)
	rec := reg.Service(meta.KeyStatus).Get(context.Background(), 9)
	assert.Nil(t, rec)
	require.Len(t, notify.alerts, 1)
	assert.Contains(t, notify.alerts[0], "Failed to load Status 9")
}

func TestGetAll(t *testing.T) {
	reg, _, reqs := newAPI(t, http.StatusOK, []map[string]any{
		{"id": 1, "name": "In Progress"},
		{"id": 2, "name": "Done"},
	})
	svc := reg.Service(meta.KeyStatus)
	records := svc.GetAll(context.Background())
	require.Len(t, records, 2)
	assert.Equal(t, "/status/all", (*reqs)[0].path)

	svc.GetAll(context.Background())
	assert.Len(t, *reqs, 1)
}

func TestCreate(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusCreated, nil)
	svc := reg.Service(meta.KeyCategory)
	cache := reg.Cache()
	genBefore := cache.Generation(meta.KeyCategory)

	ok := svc.Create(context.Background(), map[string]any{"name": "Chores"})
	require.True(t, ok)
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodPost, (*reqs)[0].method)
	assert.Equal(t, "/category", (*reqs)[0].path)
	assert.Equal(t, map[string]any{"name": "Chores"}, (*reqs)[0].body)
	assert.NotContains(t, (*reqs)[0].body, "id")

	assert.Greater(t, cache.Generation(meta.KeyCategory), genBefore)
	require.Len(t, notify.alerts, 1)
	assert.Equal(t, "A Category was successfully created", notify.alerts[0])
}

func TestCreateFailure(t *testing.T) {
	reg, notify, _ := newAPI(t, http.StatusBadRequest, nil)
	cache := reg.Cache()
	genBefore := cache.Generation(meta.KeyCategory)

	ok := reg.Service(meta.KeyCategory).Create(context.Background(), map[string]any{"name": ""})
	assert.False(t, ok)
	assert.Equal(t, genBefore, cache.Generation(meta.KeyCategory))
	require.Len(t, notify.alerts, 1)
	assert.Contains(t, notify.alerts[0], "Failed to create a Category")
}

func TestUpdateNotifiesAndInvalidates(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusOK, nil)
	svc := reg.Service(meta.KeyTask)
	cache := reg.Cache()
	genBefore := cache.Generation(meta.KeyTask)

	ok := svc.Update(context.Background(), 7, map[string]any{"title": "x"})
	require.True(t, ok)
	assert.Equal(t, http.MethodPut, (*reqs)[0].method)
	assert.Equal(t, "/task/7", (*reqs)[0].path)
	assert.Greater(t, cache.Generation(meta.KeyTask), genBefore)
	require.Len(t, notify.alerts, 1)
	assert.Equal(t, "The Task was successfully updated", notify.alerts[0])
}

func TestUpdateSilentSkipsSuccessAlert(t *testing.T) {
	reg, notify, _ := newAPI(t, http.StatusOK, nil)
	ok := reg.Service(meta.KeyTask).UpdateSilent(context.Background(), 7, map[string]any{"title": "x"})
	require.True(t, ok)
	assert.Empty(t, notify.alerts)
}

func TestDeleteDeclined(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusOK, nil)
	notify.answer = false
	cache := reg.Cache()
	genBefore := cache.Generation(meta.KeyTask)

	deleted, err := reg.Service(meta.KeyTask).Delete(context.Background(), 3)
	assert.False(t, deleted)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Empty(t, *reqs)
	assert.Empty(t, notify.alerts)
	assert.Equal(t, genBefore, cache.Generation(meta.KeyTask))
	require.Len(t, notify.confirms, 1)
	assert.Equal(t, "Are you sure you want to delete [Task.id:3]?", notify.confirms[0])
}

func TestDeleteConfirmed(t *testing.T) {
	reg, notify, reqs := newAPI(t, http.StatusNoContent, nil)
	cache := reg.Cache()
	genBefore := cache.Generation(meta.KeyTask)

	deleted, err := reg.Service(meta.KeyTask).Delete(context.Background(), 3)
	assert.True(t, deleted)
	assert.NoError(t, err)
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodDelete, (*reqs)[0].method)
	assert.Equal(t, "/task/3", (*reqs)[0].path)
	assert.Greater(t, cache.Generation(meta.KeyTask), genBefore)
	require.Len(t, notify.alerts, 1)
	assert.Equal(t, "The Task was successfully deleted", notify.alerts[0])
}

func TestDeleteTransportFailure(t *testing.T) {
	reg, notify, _ := newAPI(t, http.StatusInternalServerError, nil)
	deleted, err := reg.Service(meta.KeyTask).Delete(context.Background(), 3)
	assert.False(t, deleted)
	assert.NoError(t, err)
	require.Len(t, notify.alerts, 1)
	assert.Contains(t, notify.alerts[0], "Failed to delete the Task")
}

func TestMutationInvalidatesSearchCache(t *testing.T) {
	reg, _, reqs := newAPI(t, http.StatusOK, search.Response{PageCount: 1})
	svc := reg.Service(meta.KeyTask)

	svc.Search(context.Background(), search.Defaults())
	assert.Len(t, *reqs, 1)

	require.True(t, svc.UpdateSilent(context.Background(), 1, map[string]any{"title": "y"}))

	// The cached page is stale after the mutation and gets refetched.
	svc.Search(context.Background(), search.Defaults())
	assert.Len(t, *reqs, 3)
}

func TestOnInvalidateHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	var fired []meta.Key
	reg := NewRegistry(entity.NewRegistry(), Options{
		BaseURL:      srv.URL,
		Notifier:     &recordingNotifier{answer: true},
		OnInvalidate: func(k meta.Key) { fired = append(fired, k) },
	})
	reg.Service(meta.KeyStatus).UpdateSilent(context.Background(), 1, map[string]any{"name": "x"})
	assert.Equal(t, []meta.Key{meta.KeyStatus}, fired)
}
