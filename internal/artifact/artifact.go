// Package artifact defines the deployable file unit produced by generation
// and consumed by the uploader, plus the content-type and cache-control
// policy applied per file class.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// Artifact is a single deployable file.
type Artifact struct {
	// Path is the site-relative path, always starting with "/"
	// (e.g. "/index.html", "/_assets/styles.ab12cd34ef56.css").
	Path string

	// Content is the full file body.
	Content []byte

	// ContentType is the MIME type served for this file.
	ContentType string
}

// New builds an artifact, deriving the content type from the path extension.
func New(p string, content []byte) Artifact {
	return Artifact{Path: p, Content: content, ContentType: ContentTypeFor(p)}
}

// ContentTypeFor derives the MIME type purely from the file extension.
func ContentTypeFor(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Cache-control is bimodal: entrypoints revalidate quickly so republishes
// propagate; content-addressed assets are safe to cache forever because a
// content change always produces a new path.
const (
	CacheControlShort     = "public, max-age=300, must-revalidate"
	CacheControlImmutable = "public, max-age=31536000, immutable"
)

// CacheControlFor returns the cache policy for a site-relative path. HTML
// documents and JSON indexes are short-lived; everything else is assumed
// content-addressed and immutable.
func CacheControlFor(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".json":
		return CacheControlShort
	default:
		return CacheControlImmutable
	}
}

// ContentHash returns the full sha256 hex digest of the content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// hashedNameLen is the digest prefix length embedded in asset filenames.
// 12 hex chars (48 bits) is plenty to avoid collisions within one site.
const hashedNameLen = 12

// HashedAssetPath builds a content-addressed asset path under /_assets:
// HashedAssetPath("styles", ".css", content) -> "/_assets/styles.ab12cd34ef56.css".
func HashedAssetPath(base, ext string, content []byte) string {
	return fmt.Sprintf("/_assets/%s.%s%s", base, ContentHash(content)[:hashedNameLen], ext)
}
