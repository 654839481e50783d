package backend

import (
	"log/slog"
	"sync"

	"github.com/frahmantamala/catalog-connector/internal"
)

// Provider hands out one Client per process. The first call constructs it; every
// later call, from any goroutine, gets the same pointer or the same error.
type Provider struct {
	build func() (*Client, error)

	once   sync.Once
	client *Client
	err    error
}

func NewProvider(cfg internal.BackendConfig, logger *slog.Logger) *Provider {
	return NewProviderWith(func() (*Client, error) {
		return NewClient(cfg, logger)
	})
}

// NewProviderWith memoizes an arbitrary constructor.
func NewProviderWith(build func() (*Client, error)) *Provider {
	return &Provider{build: build}
}

func (p *Provider) Client() (*Client, error) {
	p.once.Do(func() {
		p.client, p.err = p.build()
	})
	return p.client, p.err
}
