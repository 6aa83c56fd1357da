package shopify

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// themeDirs are the top-level directories Shopify accepts theme assets under.
// templates/customers lives below templates and needs no entry of its own.
var themeDirs = []string{"assets", "config", "layout", "snippets", "templates", "locales"}

// ThemeDirs returns the recognized top-level theme directory names.
func ThemeDirs() []string {
	dirs := make([]string, len(themeDirs))
	copy(dirs, themeDirs)
	return dirs
}

// KeyMapper converts local file paths into the asset keys used by the API.
// Keys are always recomputed, never cached.
type KeyMapper struct {
	base string // absolute theme base directory
}

func NewKeyMapper(basePath string) (*KeyMapper, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("error resolving base path: %v", err)
	}
	return &KeyMapper{base: abs}, nil
}

// BasePath returns the absolute theme base directory.
func (m *KeyMapper) BasePath() string {
	return m.base
}

// rel resolves localPath and returns its forward-slash path relative to the
// base directory. The base directory itself and anything escaping it via ..
// fail the containment check.
func (m *KeyMapper) rel(localPath string) (string, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.base, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside the theme directory", localPath)
	}
	return strings.TrimPrefix(rel, "/"), nil
}

// ValidPath reports whether localPath lives under the base directory inside
// one of the recognized theme subdirectories. The check on the first segment
// is case-insensitive.
func (m *KeyMapper) ValidPath(localPath string) bool {
	rel, err := m.rel(localPath)
	if err != nil {
		return false
	}
	first := strings.ToLower(strings.SplitN(rel, "/", 2)[0])
	for _, dir := range themeDirs {
		if first == dir {
			return true
		}
	}
	return false
}

// RelPath returns the plain (unencoded) forward-slash path of localPath
// relative to the base directory, validated against the whitelist. This is
// the form remote listings use for their keys.
func (m *KeyMapper) RelPath(localPath string) (string, error) {
	if !m.ValidPath(localPath) {
		return "", &Error{Kind: KindInvalidPath, Op: "asset key for " + localPath}
	}
	rel, err := m.rel(localPath)
	if err != nil {
		return "", &Error{Kind: KindInvalidPath, Op: "asset key for " + localPath, Err: err}
	}
	return rel, nil
}

// AssetKey derives the remote asset key for localPath: relative to the base
// directory, forward-slash separated, each segment percent-encoded. Invalid
// paths return a KindInvalidPath error; callers treat those as a silent skip
// for upload/remove.
func (m *KeyMapper) AssetKey(localPath string) (string, error) {
	rel, err := m.RelPath(localPath)
	if err != nil {
		return "", err
	}
	segs := strings.Split(rel, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/"), nil
}

// LocalPath is the inverse mapping used by downloads: a remote asset key back
// to an absolute path under the base directory.
func (m *KeyMapper) LocalPath(key string) (string, error) {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		dec, err := url.PathUnescape(s)
		if err != nil {
			return "", fmt.Errorf("undecodable asset key %q: %v", key, err)
		}
		if dec == ".." || dec == "." || dec == "" {
			return "", fmt.Errorf("unsafe asset key %q", key)
		}
		segs[i] = dec
	}
	return filepath.Join(m.base, filepath.FromSlash(strings.Join(segs, "/"))), nil
}
