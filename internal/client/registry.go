package client

import (
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/meta"
)

// Options configure a service registry.
type Options struct {
	// BaseURL of the remote entity API, without trailing slash.
	BaseURL string
	// HTTPClient overrides the transport. Defaults to a client with a
	// modest timeout; pending requests on dismissed views die there.
	HTTPClient *http.Client
	// Notifier receives alerts and confirmation prompts.
	// Defaults to LogNotifier.
	Notifier Notifier
	// CacheSize bounds the shared query cache. Defaults to 256.
	CacheSize int
	// OnInvalidate, when set, fires after any mutation invalidated an
	// entity type's cached reads.
	OnInvalidate func(meta.Key)
}

// Registry maps every registered entity type to its Service. Like the
// metadata registry it is built once at startup; foreign-key display
// and relation traversal resolve services through it without
// compile-time knowledge of the concrete entity.
type Registry struct {
	services map[meta.Key]*Service
	cache    *Cache
}

// NewRegistry builds one Service per entity in the metadata registry,
// all sharing a single cache and notifier.
func NewRegistry(metas *meta.Registry, opts Options) *Registry {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	cache := NewCache(opts.CacheSize)
	r := &Registry{
		services: make(map[meta.Key]*Service),
		cache:    cache,
	}
	for _, k := range metas.Keys() {
		r.services[k] = &Service{
			meta:         metas.Entity(k),
			base:         opts.BaseURL,
			hc:           opts.HTTPClient,
			cache:        cache,
			notify:       opts.Notifier,
			onInvalidate: opts.OnInvalidate,
		}
	}
	return r
}

// Service returns the client for an entity type.
func (r *Registry) Service(k meta.Key) *Service {
	return r.services[k]
}

// Cache exposes the shared query cache, mainly for tests.
func (r *Registry) Cache() *Cache {
	return r.cache
}
