package component

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"

	"github.com/yuin/goldmark"
)

// stringProp extracts a string prop, returning "" for missing or non-string
// values so renderers degrade instead of failing.
func stringProp(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func listProp(props map[string]any, key string) []any {
	if props == nil {
		return nil
	}
	if v, ok := props[key].([]any); ok {
		return v
	}
	return nil
}

func renderHero(props map[string]any, _ string) string {
	heading := html.EscapeString(stringProp(props, "heading"))
	subheading := html.EscapeString(stringProp(props, "subheading"))
	out := `<section class="sp-hero"><h1>` + heading + `</h1>`
	if subheading != "" {
		out += `<p class="sp-hero-sub">` + subheading + `</p>`
	}
	return out + `</section>`
}

func renderFeatures(props map[string]any, _ string) string {
	var buf bytes.Buffer
	buf.WriteString(`<section class="sp-features">`)
	for _, item := range listProp(props, "items") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		buf.WriteString(`<div class="sp-feature"><h3>`)
		buf.WriteString(html.EscapeString(stringProp(entry, "title")))
		buf.WriteString(`</h3><p>`)
		buf.WriteString(html.EscapeString(stringProp(entry, "description")))
		buf.WriteString(`</p></div>`)
	}
	buf.WriteString(`</section>`)
	return buf.String()
}

func renderText(props map[string]any, _ string) string {
	return `<div class="sp-text"><p>` + html.EscapeString(stringProp(props, "content")) + `</p></div>`
}

// renderMarkdown converts a markdown prop to HTML. Conversion failures fall
// back to escaped plain text so a bad block cannot abort the page.
func renderMarkdown(props map[string]any, _ string) string {
	source := stringProp(props, "content")
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		slog.Warn("Markdown conversion failed, falling back to plain text", "error", err)
		return `<div class="sp-markdown"><p>` + html.EscapeString(source) + `</p></div>`
	}
	return `<div class="sp-markdown">` + buf.String() + `</div>`
}

func renderImage(props map[string]any, _ string) string {
	src := html.EscapeString(stringProp(props, "src"))
	alt := html.EscapeString(stringProp(props, "alt"))
	if src == "" {
		return `<div class="sp-image sp-image-empty"></div>`
	}
	return fmt.Sprintf(`<img class="sp-image" src="%s" alt="%s">`, src, alt)
}

func renderButton(props map[string]any, _ string) string {
	label := html.EscapeString(stringProp(props, "label"))
	href := html.EscapeString(stringProp(props, "href"))
	if href == "" {
		href = "#"
	}
	return fmt.Sprintf(`<a class="sp-button" href="%s">%s</a>`, href, label)
}

func renderDivider(map[string]any, string) string {
	return `<hr class="sp-divider">`
}

// renderFallback produces minimal markup for unrecognized component types.
func renderFallback(typ string, _ map[string]any, childrenHTML string) string {
	return `<div class="sp-block" data-type="` + html.EscapeString(typ) + `">` + childrenHTML + `</div>`
}
