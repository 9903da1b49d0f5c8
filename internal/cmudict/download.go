package cmudict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultURL serves the cmusphinx build of CMUdict.
const DefaultURL = "https://raw.githubusercontent.com/cmusphinx/cmudict/master/cmudict.dict"

// Fetch describes the result of EnsureDictionary.
type Fetch struct {
	Path   string
	Cached bool
}

// EnsureDictionary downloads the dictionary from url into path unless a file
// already exists there. The download is parsed before it replaces path.
func EnsureDictionary(ctx context.Context, url, path string, force bool) (Fetch, error) {
	if path == "" {
		return Fetch{}, fmt.Errorf("dictionary path is required")
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return Fetch{Path: path, Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Fetch{}, fmt.Errorf("failed to stat dictionary: %w", err)
		}
	}
	if url == "" {
		url = DefaultURL
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Fetch{}, fmt.Errorf("failed to create dictionary dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "cmudict-*.dict")
	if err != nil {
		return Fetch{}, fmt.Errorf("failed to create temp dictionary: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return Fetch{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Fetch{}, fmt.Errorf("unexpected dictionary status: %s", resp.Status)
	}
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return Fetch{}, fmt.Errorf("failed to download dictionary: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Fetch{}, fmt.Errorf("failed to close temp dictionary: %w", err)
	}
	if _, err := Load(tmpPath); err != nil {
		return Fetch{}, fmt.Errorf("downloaded dictionary is invalid: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return Fetch{}, fmt.Errorf("failed to move dictionary into place: %w", err)
	}
	return Fetch{Path: path}, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "lybrarian-cli")
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
