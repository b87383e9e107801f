// Package siteconfig caches the public site configuration for the lifetime
// of the process. Fetching is best effort: a failure leaves the default
// title in place and never blocks startup.
package siteconfig

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/subdock/subdock-cli/internal/models"
)

const DefaultTitle = "SubDock"

// ConfigAPI is the one call the loader makes.
type ConfigAPI interface {
	Get(ctx context.Context) (models.PublicConfig, error)
}

type Loader struct {
	api ConfigAPI
	log zerolog.Logger

	mu     sync.Mutex
	title  string
	loaded bool
}

func NewLoader(api ConfigAPI, log zerolog.Logger) *Loader {
	return &Loader{
		api:   api,
		log:   log,
		title: DefaultTitle,
	}
}

// Fetch loads the site configuration at most once. Calls are serialized, so
// a call issued while another is in flight waits and then no-ops if that one
// succeeded; after the first success no further requests are made.
func (l *Loader) Fetch(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return
	}

	cfg, err := l.api.Get(ctx)
	if err != nil {
		l.log.Debug().Err(err).Msg("site config fetch failed, using default title")
		return
	}

	if cfg.WebsiteTitle != "" {
		l.title = cfg.WebsiteTitle
	}
	l.loaded = true
}

func (l *Loader) WebsiteTitle() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.title
}

func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
