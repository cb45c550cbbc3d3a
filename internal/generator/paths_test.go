package generator

import "testing"

func TestPagePath(t *testing.T) {
	cases := map[string]string{
		"/":          "/index.html",
		"":           "/index.html",
		"/about":     "/about/index.html",
		"about":      "/about/index.html",
		"/about/":    "/about/index.html",
		"/shop/shoes": "/shop/shoes/index.html",
		"/Café": "/cafe/index.html",
		"/My Page":   "/my-page/index.html",
	}
	for slug, want := range cases {
		if got := PagePath(slug); got != want {
			t.Errorf("PagePath(%q) = %q, want %q", slug, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":  "hello-world",
		"  spaced  ":   "spaced",
		"Café":    "cafe",
		"a--b":         "a-b",
		"UPPER":        "upper",
		"trailing-":    "trailing",
		"--":           "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
