package prompt

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader turns a Source into a parsed Template.
type Loader interface {
	Load(ctx context.Context, src Source) (Template, error)
}

// LoaderOptions carries resolved loader configuration. Construction helpers
// live in the top-level promptgen package.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
}

// LoaderOption mutates LoaderOptions during construction.
type LoaderOption func(*LoaderOptions)

// NewLoaderOptions resolves a LoaderOptions from the provided options.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLoaderFS configures the fs.FS consulted by SourceKindFS sources.
func WithLoaderFS(filesystem fs.FS) LoaderOption {
	return func(cfg *LoaderOptions) {
		cfg.FileSystem = filesystem
	}
}

// WithHTTPClient supplies a custom client for SourceKindURL sources and
// implies HTTP support.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(cfg *LoaderOptions) {
		cfg.HTTPClient = client
	}
}

// WithHTTPFallback toggles URL loading with a default client.
func WithHTTPFallback(allow bool) LoaderOption {
	return func(cfg *LoaderOptions) {
		cfg.AllowHTTPFallback = allow
	}
}

// WithRequestTimeout bounds each remote fetch.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(cfg *LoaderOptions) {
		cfg.RequestTimeout = timeout
	}
}
