// Package catalog loads the read-only challenge list from the built-in pack,
// a local file or a URL.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dailyfix/internal/constants"
	"github.com/julianstephens/dailyfix/internal/logger"
	"github.com/julianstephens/dailyfix/internal/models"
)

var (
	// ErrEmptyCatalog is returned when no usable challenge matches the language.
	ErrEmptyCatalog = errors.New("no challenges found")
	// ErrNotReady is returned when a remote catalog does not answer in time.
	ErrNotReady = errors.New("catalog not ready")
	// ErrTooLarge is returned when a remote catalog exceeds its size cap.
	ErrTooLarge = errors.New("catalog too large")
)

//go:embed challenges.json
var builtin []byte

// Provider supplies the raw challenge list.
type Provider interface {
	Load(ctx context.Context) ([]models.Challenge, error)
	Source() string
}

// Embedded serves the pack compiled into the binary.
type Embedded struct{}

func (Embedded) Load(ctx context.Context) ([]models.Challenge, error) {
	return Parse(builtin, FormatJSON)
}

func (Embedded) Source() string { return "built-in" }

// File reads a JSON or YAML catalog from disk; the format follows the
// extension.
type File struct {
	Path string
}

func (f File) Load(ctx context.Context) ([]models.Challenge, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, FormatFor(f.Path))
}

func (f File) Source() string { return f.Path }

// HTTP fetches a catalog with a deadline. Deadline expiry reports
// ErrNotReady; there are no retries. Bodies over MaxBytes (default
// constants.MaxCatalogBytes) are rejected with ErrTooLarge.
type HTTP struct {
	URL      string
	Timeout  time.Duration
	MaxBytes int64
	Client   *http.Client
}

func (h HTTP) Load(ctx context.Context) ([]models.Challenge, error) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultCatalogTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s did not respond within %s", ErrNotReady, h.URL, timeout)
		}
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch catalog: %s returned %s", h.URL, resp.Status)
	}

	limit := h.MaxBytes
	if limit <= 0 {
		limit = constants.MaxCatalogBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s did not respond within %s", ErrNotReady, h.URL, timeout)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, h.URL, limit)
	}

	format := FormatFor(req.URL.Path)
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		format = FormatYAML
	}
	return Parse(data, format)
}

func (h HTTP) Source() string { return h.URL }

// Resolve maps a --catalog value to a provider: empty for the built-in
// pack, http(s) URLs for HTTP, anything else for a file path.
func Resolve(source string, timeout time.Duration) Provider {
	switch {
	case source == "":
		return Embedded{}
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return HTTP{URL: source, Timeout: timeout}
	default:
		return File{Path: source}
	}
}

// Format of a serialized catalog.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a catalog document. A document that is not a list decodes
// to an empty catalog.
func Parse(data []byte, format Format) ([]models.Challenge, error) {
	var out []models.Challenge
	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
		if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
			return nil, nil
		}
		if err := doc.Content[0].Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	default:
		var raw json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
		if trimmed := strings.TrimSpace(string(raw)); !strings.HasPrefix(trimmed, "[") {
			return nil, nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	}
	return out, nil
}

// Filter keeps the valid challenges for language, in catalog order.
func Filter(all []models.Challenge, language string) ([]models.Challenge, error) {
	out := make([]models.Challenge, 0, len(all))
	for _, ch := range all {
		if ch.Language != language {
			continue
		}
		if err := ch.Validate(); err != nil {
			logger.Warn("Skipping catalog entry", "error", err)
			continue
		}
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for language %q", ErrEmptyCatalog, language)
	}
	return out, nil
}

// Load reads p and filters it to language.
func Load(ctx context.Context, p Provider, language string) ([]models.Challenge, error) {
	all, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	out, err := Filter(all, language)
	if err != nil {
		return nil, err
	}
	logger.Debug("Catalog loaded", "source", p.Source(), "language", language, "total", len(all), "usable", len(out))
	return out, nil
}
