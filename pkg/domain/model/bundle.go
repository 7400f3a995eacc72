package model

import (
	"strings"
	"time"
)

// BundleSource pins a downloadable dictionary bundle
type BundleSource struct {
	// URL may contain "{version}", replaced by Version
	URL     string `toml:"url" yaml:"url" json:"url"`
	Version string `toml:"version" yaml:"version" json:"version,omitempty"`
	// SHA256 is the hex digest of the downloaded archive. Empty disables the
	// integrity check.
	SHA256 string `toml:"sha256" yaml:"sha256" json:"sha256,omitempty"`
}

// DownloadURL is URL with the version substituted
func (s BundleSource) DownloadURL() string {
	return strings.ReplaceAll(s.URL, "{version}", s.Version)
}

// Repository returns "owner/repo" for github:// sources, otherwise ""
func (s BundleSource) Repository() string {
	rest, ok := strings.CutPrefix(s.DownloadURL(), "github://")
	if !ok {
		return ""
	}
	repo, _, _ := strings.Cut(rest, "@")
	return repo
}

// Ref returns the ref of a github:// source, otherwise ""
func (s BundleSource) Ref() string {
	rest, ok := strings.CutPrefix(s.DownloadURL(), "github://")
	if !ok {
		return ""
	}
	_, ref, _ := strings.Cut(rest, "@")
	return ref
}

// WithRef returns a copy pointing a github:// source at ref. The pinned
// digest does not apply to other refs and is cleared.
func (s BundleSource) WithRef(ref string) BundleSource {
	repo := s.Repository()
	if repo == "" || ref == "" {
		return s
	}
	return BundleSource{URL: "github://" + repo + "@" + ref}
}

// BundleResult represents an extracted bundle in the cache directory
type BundleResult struct {
	Dir       string    // Directory holding the extracted .aff/.dic files
	Files     []string  // Extracted file names relative to Dir
	Size      int64     // Total extracted size in bytes
	SHA256    string    // Digest of the downloaded archive
	FetchedAt time.Time // Time the archive was downloaded
}
