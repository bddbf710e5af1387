package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SplitFullName tách "owner/name" thành owner và name.
func SplitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository full name %q", fullName)
	}
	return owner, name, nil
}

func contentsPath(fullName, filePath string) (string, error) {
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return "", err
	}
	p := fmt.Sprintf("/repos/%s/%s/contents", url.PathEscape(owner), url.PathEscape(name))
	filePath = strings.Trim(filePath, "/")
	if filePath != "" {
		segments := strings.Split(filePath, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		p += "/" + strings.Join(segments, "/")
	}
	return p, nil
}

// GetFile returns the decoded content of a file. A directory or missing path
// yields ErrNotFound.
func (c *Caller) GetFile(ctx context.Context, fullName, filePath string) (string, error) {
	p, err := contentsPath(fullName, filePath)
	if err != nil {
		return "", err
	}
	resp, err := c.Request(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return "", err
	}
	// A directory answers with a JSON array.
	if trimmed := strings.TrimSpace(string(resp.Body)); strings.HasPrefix(trimmed, "[") {
		return "", ErrNotFound
	}
	var entry ContentEntry
	if err := json.Unmarshal(resp.Body, &entry); err != nil {
		return "", fmt.Errorf("decode contents of %s/%s: %w", fullName, filePath, err)
	}
	if entry.Type != "" && entry.Type != "file" {
		return "", ErrNotFound
	}
	return decodeContent(entry)
}

// ListDir lists a directory; an empty path lists the repository root.
func (c *Caller) ListDir(ctx context.Context, fullName, dirPath string) ([]ContentEntry, error) {
	p, err := contentsPath(fullName, dirPath)
	if err != nil {
		return nil, err
	}
	resp, err := c.Request(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(string(resp.Body)); !strings.HasPrefix(trimmed, "[") {
		return nil, ErrNotFound
	}
	var entries []ContentEntry
	if err := json.Unmarshal(resp.Body, &entries); err != nil {
		return nil, fmt.Errorf("decode listing of %s/%s: %w", fullName, dirPath, err)
	}
	return entries, nil
}

// Readme fetches the repository README through the dedicated endpoint.
func (c *Caller) Readme(ctx context.Context, fullName string) (string, error) {
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return "", err
	}
	p := fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(name))
	resp, err := c.Request(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return "", err
	}
	var entry ContentEntry
	if err := json.Unmarshal(resp.Body, &entry); err != nil {
		return "", fmt.Errorf("decode readme of %s: %w", fullName, err)
	}
	return decodeContent(entry)
}

func decodeContent(entry ContentEntry) (string, error) {
	if entry.Encoding != "" && entry.Encoding != "base64" {
		return entry.Content, nil
	}
	// GitHub wraps base64 at 60 columns.
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(entry.Content)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode base64 content of %s: %w", entry.Path, err)
	}
	return string(data), nil
}
