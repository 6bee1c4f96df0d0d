package promptgen

import (
	internalLoader "github.com/goliatone/go-promptgen/internal/prompt/loader"
	pkgprompt "github.com/goliatone/go-promptgen/pkg/prompt"
)

// NewLoader constructs a template loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgprompt.LoaderOption) pkgprompt.Loader {
	cfg := pkgprompt.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
