package maven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fastenhq/javacg/internal/callgraph"
)

// ErrNotFound marks an artifact file absent from every configured
// repository. It is distinct from transport errors, which abort the
// fallback loop immediately.
var ErrNotFound = errors.New("not found in any configured repository")

// errMissing marks a single repository answering 404; the fallback loop
// moves on to the next repository.
var errMissing = errors.New("not found")

// Resolver downloads POM and JAR files and extracts direct dependencies.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a resolver with a default HTTP client.
func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewResolverWithClient creates a resolver using the given HTTP client.
func NewResolverWithClient(client *http.Client) *Resolver {
	return &Resolver{client: client}
}

// fetch retrieves one URL. A 404 yields errMissing so the caller can try
// the next repository; any other failure is terminal.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", url, errMissing)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return body, nil
}

// fetchFirst walks the coordinate's repositories in order and returns the
// first hit.
func (r *Resolver) fetchFirst(ctx context.Context, coord Coordinate, urlOf func(repo string) string) ([]byte, error) {
	for _, repo := range coord.Repos() {
		url := urlOf(repo)
		log.Debug().Str("url", url).Msg("fetching")

		body, err := r.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, errMissing) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", coord, ErrNotFound)
}

// DownloadPom returns the coordinate's POM contents.
func (r *Resolver) DownloadPom(ctx context.Context, coord Coordinate) ([]byte, error) {
	return r.fetchFirst(ctx, coord, coord.PomURL)
}

// DownloadJar stores the coordinate's JAR in a temporary file and returns
// its path. The caller owns the file for the duration of its own use and
// removes it when done.
func (r *Resolver) DownloadJar(ctx context.Context, coord Coordinate) (string, error) {
	body, err := r.fetchFirst(ctx, coord, coord.JarURL)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "javacg-*.jar")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close %s: %w", f.Name(), err)
	}

	log.Debug().Str("coordinate", coord.String()).Str("path", f.Name()).Msg("downloaded jar")
	return f.Name(), nil
}

// Dependencies resolves the coordinate's direct dependencies from its POM:
// property substitution, then the root dependencies block and each profile
// block independently.
func (r *Resolver) Dependencies(ctx context.Context, coord Coordinate) (callgraph.DependencySet, error) {
	body, err := r.DownloadPom(ctx, coord)
	if err != nil {
		return nil, err
	}

	pom, err := parsePom(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", coord, err)
	}

	return pom.dependencySet(), nil
}
