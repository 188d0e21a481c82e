// Package client talks to the remote entity API. One Service per
// entity type translates metadata-aware operations into HTTP calls,
// caches query results, and invalidates them on mutation.
//
// Failure policy: every transport or server failure on any operation
// is reported through the Notifier and converted to a benign fallback
// value (empty result, nil record, false). Nothing here returns a
// transport error to the caller. The single distinguishable outcome is
// a user-declined delete, which yields ErrCanceled.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/search"
)

// ErrCanceled reports a delete the user declined to confirm. It is not
// an error condition: no alert is raised and no cache is touched.
var ErrCanceled = errors.New("client: operation canceled by user")

// SearchResult is one page of search results.
type SearchResult struct {
	Items     []meta.Record
	PageCount int
}

// Service is the per-entity-type client.
type Service struct {
	meta   *meta.EntityMeta
	base   string
	hc     *http.Client
	cache  *Cache
	notify Notifier

	// onInvalidate fires after a mutation invalidated the type's
	// cached reads, with the affected entity key.
	onInvalidate func(meta.Key)
}

// Meta returns the entity metadata the service operates on.
func (s *Service) Meta() *meta.EntityMeta { return s.meta }

// do issues one HTTP request against the remote API. Every request
// carries a correlation id for log stitching on the backend.
func (s *Service) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Correlation-ID", uuid.NewString())
	return s.hc.Do(req)
}

// Search fetches one page of results for the canonical parameters.
// Results are cached per exact parameter tuple; a transport failure
// alerts and degrades to an empty result set.
func (s *Service) Search(ctx context.Context, p search.Params) SearchResult {
	args := p.Encode()
	if v, ok := s.cache.Get(s.meta.Key, "search", args); ok {
		return v.(SearchResult)
	}
	gen := s.cache.Generation(s.meta.Key)
	res, err := s.searchRemote(ctx, p)
	if err != nil {
		s.notify.Alertf("Failed to search for %s, %v", s.meta.Plural, err)
		return SearchResult{}
	}
	s.cache.Put(s.meta.Key, "search", args, gen, res)
	return res
}

func (s *Service) searchRemote(ctx context.Context, p search.Params) (SearchResult, error) {
	resp, err := s.do(ctx, http.MethodPost, s.meta.APIPrefix+"/search", p)
	if err != nil {
		return SearchResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, fmt.Errorf("search: status %d", resp.StatusCode)
	}
	var body search.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SearchResult{}, fmt.Errorf("search: decoding response: %w", err)
	}
	out := SearchResult{PageCount: body.PageCount, Items: make([]meta.Record, 0, len(body.Items))}
	for _, item := range body.Items {
		out.Items = append(out.Items, meta.Record(item))
	}
	return out, nil
}

// Get fetches one entity. A nil return means not-yet-loaded, never
// "does not exist". Ids <= 0 are the unset-reference sentinel and are
// never fetched.
func (s *Service) Get(ctx context.Context, id int64) meta.Record {
	if id <= 0 {
		return nil
	}
	args := fmt.Sprintf("%d", id)
	if v, ok := s.cache.Get(s.meta.Key, "get", args); ok {
		return v.(meta.Record)
	}
	gen := s.cache.Generation(s.meta.Key)
	rec, err := s.getRemote(ctx, id)
	if err != nil {
		s.notify.Alertf("Failed to load %s %d, %v", s.meta.Singular, id, err)
		return nil
	}
	s.cache.Put(s.meta.Key, "get", args, gen, rec)
	return rec
}

func (s *Service) getRemote(ctx context.Context, id int64) (meta.Record, error) {
	resp, err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", s.meta.APIPrefix, id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get: status %d", resp.StatusCode)
	}
	var rec meta.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("get: decoding response: %w", err)
	}
	return rec, nil
}

// GetAll fetches every entity of the type, unpaginated. nil means the
// fetch failed (already alerted), not an empty collection.
func (s *Service) GetAll(ctx context.Context) []meta.Record {
	if v, ok := s.cache.Get(s.meta.Key, "getAll", ""); ok {
		return v.([]meta.Record)
	}
	gen := s.cache.Generation(s.meta.Key)
	resp, err := s.do(ctx, http.MethodGet, s.meta.APIPrefix+"/all", nil)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("getAll: status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.notify.Alertf("Failed to load %s entities, %v", s.meta.Singular, err)
		return nil
	}
	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		s.notify.Alertf("Failed to load %s entities, %v", s.meta.Singular, err)
		return nil
	}
	records := make([]meta.Record, 0, len(items))
	for _, item := range items {
		records = append(records, meta.Record(item))
	}
	s.cache.Put(s.meta.Key, "getAll", "", gen, records)
	return records
}

// Create posts a new entity (payload must not contain the primary
// key). The created entity is not returned; callers observe it by
// re-querying after invalidation.
func (s *Service) Create(ctx context.Context, payload map[string]any) bool {
	resp, err := s.do(ctx, http.MethodPost, s.meta.APIPrefix, payload)
	if err == nil {
		resp.Body.Close()
		if !created(resp.StatusCode) {
			err = fmt.Errorf("create: status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.notify.Alertf("Failed to create a %s, %v", s.meta.Singular, err)
		return false
	}
	s.invalidate()
	s.notify.Alertf("A %s was successfully created", s.meta.Singular)
	return true
}

// Update replaces an entity's fields. Silent mode skips the success
// notification; background toggles use it.
func (s *Service) Update(ctx context.Context, id int64, payload map[string]any) bool {
	return s.update(ctx, id, payload, false)
}

// UpdateSilent is Update without the success notification.
func (s *Service) UpdateSilent(ctx context.Context, id int64, payload map[string]any) bool {
	return s.update(ctx, id, payload, true)
}

func (s *Service) update(ctx context.Context, id int64, payload map[string]any, silent bool) bool {
	resp, err := s.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", s.meta.APIPrefix, id), payload)
	if err == nil {
		resp.Body.Close()
		if !created(resp.StatusCode) {
			err = fmt.Errorf("update: status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.notify.Alertf("Failed to update %s %d, %v", s.meta.Singular, id, err)
		return false
	}
	s.invalidate()
	if !silent {
		s.notify.Alertf("The %s was successfully updated", s.meta.Singular)
	}
	return true
}

// Delete asks for confirmation, then deletes. A declined confirmation
// returns (false, ErrCanceled) with no alert and no cache activity;
// a transport failure alerts and returns (false, nil).
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	prompt := fmt.Sprintf("Are you sure you want to delete [%s.id:%d]?", s.meta.Singular, id)
	if !s.notify.Confirm(prompt) {
		return false, ErrCanceled
	}
	resp, err := s.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", s.meta.APIPrefix, id), nil)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			err = fmt.Errorf("delete: status %d", resp.StatusCode)
		}
	}
	if err != nil {
		s.notify.Alertf("Failed to delete the %s, %v", s.meta.Singular, err)
		return false, nil
	}
	s.invalidate()
	s.notify.Alertf("The %s was successfully deleted", s.meta.Singular)
	return true, nil
}

func (s *Service) invalidate() {
	s.cache.Invalidate(s.meta.Key)
	if s.onInvalidate != nil {
		s.onInvalidate(s.meta.Key)
	}
}

func created(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}
