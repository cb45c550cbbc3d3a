package artifact

import (
	"strings"
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"/index.html":              "text/html; charset=utf-8",
		"/about/index.html":        "text/html; charset=utf-8",
		"/_assets/styles.ab12.css": "text/css; charset=utf-8",
		"/_assets/scripts.ab12.js": "application/javascript",
		"/_dynamic.json":           "application/json",
		"/robots.txt":              "text/plain; charset=utf-8",
		"/noextension":             "text/plain; charset=utf-8",
	}
	for p, want := range cases {
		if got := ContentTypeFor(p); got != want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestCacheControlBimodal(t *testing.T) {
	if got := CacheControlFor("/index.html"); got != CacheControlShort {
		t.Errorf("html should be short-lived, got %q", got)
	}
	if got := CacheControlFor("/_dynamic.json"); got != CacheControlShort {
		t.Errorf("json indexes should be short-lived, got %q", got)
	}
	if got := CacheControlFor("/_assets/styles.ab12cd34ef56.css"); got != CacheControlImmutable {
		t.Errorf("hashed assets should be immutable, got %q", got)
	}
}

func TestHashedAssetPathChangesWithContent(t *testing.T) {
	a := HashedAssetPath("styles", ".css", []byte("body{}"))
	b := HashedAssetPath("styles", ".css", []byte("body{margin:0}"))

	if a == b {
		t.Error("different content must produce different asset paths")
	}
	if !strings.HasPrefix(a, "/_assets/styles.") || !strings.HasSuffix(a, ".css") {
		t.Errorf("unexpected asset path shape: %q", a)
	}

	// Same content, same path: generation stays deterministic.
	if HashedAssetPath("styles", ".css", []byte("body{}")) != a {
		t.Error("hashed path must be deterministic for fixed content")
	}
}

func TestNewDerivesContentType(t *testing.T) {
	a := New("/_dynamic.json", []byte("[]"))
	if a.ContentType != "application/json" {
		t.Errorf("got %q", a.ContentType)
	}
}
