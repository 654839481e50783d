package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const defaultSchema = "public"

// Client is the shared handle to the hosted backend. It is built once at startup
// and handed to every consumer; queries go straight through the official client.
type Client struct {
	raw     *supabase.Client
	url     string
	schema  string
	keyKind KeyKind
	logger  *slog.Logger
}

// NewClient builds the handle from the endpoint URL and publishable key. Missing,
// malformed or secret credentials fail with a configuration error before any
// request is issued.
func NewClient(cfg internal.BackendConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("backend configuration rejected", "error", err)
		return nil, err
	}

	kind := ClassifyKey(cfg.PublishableKey)
	if kind.IsSecret() {
		logger.Error("backend configuration rejected", "error", internal.ErrSecretKeyExposed)
		return nil, internal.ErrSecretKeyExposed
	}

	schema := cfg.Schema
	if schema == "" {
		schema = defaultSchema
	}

	endpoint := cfg.EndpointURL()
	raw, err := supabase.NewClient(endpoint, cfg.PublishableKey, &supabase.ClientOptions{Schema: schema})
	if err != nil {
		return nil, internal.NewConfigurationError("failed to initialize backend client", internal.ErrCodeInvalidConfig).WithCause(err)
	}

	logger.Info("backend client initialized", "url", endpoint, "schema", schema, "key_kind", kind)

	return &Client{
		raw:     raw,
		url:     endpoint,
		schema:  schema,
		keyKind: kind,
		logger:  logger,
	}, nil
}

// From starts a query against a backend table.
func (c *Client) From(table string) *postgrest.QueryBuilder {
	return c.raw.From(table)
}

// Raw exposes the underlying client, including its auth, storage and functions APIs.
func (c *Client) Raw() *supabase.Client {
	return c.raw
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Schema() string {
	return c.schema
}

func (c *Client) KeyKind() KeyKind {
	return c.keyKind
}

// Probe issues a one-row read against table. The client library does not take a
// context, so cancellation only stops the wait, not the request.
func (c *Client) Probe(ctx context.Context, table string) error {
	done := make(chan error, 1)
	go func() {
		_, _, err := c.raw.From(table).Select("*", "", false).Limit(1, "").Execute()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("probe %s: %w", table, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("probe %s: %w", table, ctx.Err())
	}
}
