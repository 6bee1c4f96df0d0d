// Package loader implements the prompt.Loader contract with file, fs.FS, and
// HTTP strategies.
package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

// Loader delegates to file, fs.FS, or HTTP strategies. Construction helpers
// live in the top-level promptgen package.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// Ensure the implementation satisfies the public interface.
var _ prompt.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options prompt.LoaderOptions) prompt.Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches template bytes from the source and parses them into a
// Template. The template name defaults to the source's base name without
// extension; frontmatter may override it.
func (l *Loader) Load(ctx context.Context, src prompt.Source) (prompt.Template, error) {
	if src == nil {
		return prompt.Template{}, errors.New("prompt loader: source is nil")
	}
	if src.Location() == "" {
		return prompt.Template{}, errors.New("prompt loader: source location is required")
	}
	if err := ctx.Err(); err != nil {
		return prompt.Template{}, err
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case prompt.SourceKindFile:
		data, err = l.loadFile(src.Location())
	case prompt.SourceKindFS:
		data, err = l.loadFromFS(src.Location())
	case prompt.SourceKindURL:
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		err = errors.New("prompt loader: unsupported source kind")
	}
	if err != nil {
		return prompt.Template{}, err
	}

	return prompt.Parse(templateName(src), data)
}

func (l *Loader) loadFile(location string) ([]byte, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func (l *Loader) loadFromFS(location string) ([]byte, error) {
	if l.fs == nil {
		return nil, errors.New("prompt loader: filesystem is not configured")
	}
	return fs.ReadFile(l.fs, location)
}

func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	if !l.allowHTTP {
		return nil, errors.New("prompt loader: http support disabled")
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("prompt loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func templateName(src prompt.Source) string {
	location := src.Location()
	var base string
	if src.Kind() == prompt.SourceKindFile {
		base = filepath.Base(location)
	} else {
		base = path.Base(location)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
