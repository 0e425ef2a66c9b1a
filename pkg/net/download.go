package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrorURLNotFound = errors.New("URL not found")

func getResp(ctx context.Context, url string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	return GetHTTPClient().Do(req) //nolint:gosec // G704: URL comes from operator config or flags
}

// IsURL reports whether s is an http(s) URL rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Download saves the content at url to filepath.
func Download(ctx context.Context, url string, filepath string) (retErr error) {
	resp, err := getResp(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	PrintHTTPResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return ErrorURLNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	return nil
}

// Fetch returns a local path for src. Local paths are returned as is; URLs are downloaded
// into dir under their last path segment so the file extension is kept.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	if !IsURL(src) {
		return src, nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid URL %s: %w", src, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("URL %s does not name a file", src)
	}

	dst := filepath.Join(dir, name)
	if err := Download(ctx, src, dst); err != nil {
		return "", fmt.Errorf("fetching %s: %w", src, err)
	}
	return dst, nil
}
