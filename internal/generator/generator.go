// Package generator turns a website snapshot into the deployable static
// artifact set. Static components render to final HTML; server-backed
// components become hydration placeholders and are indexed in the island
// manifest. For a fixed snapshot the output is byte-for-byte deterministic.
package generator

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitepress/internal/artifact"
	"git.home.luguber.info/inful/sitepress/internal/component"
	"git.home.luguber.info/inful/sitepress/internal/site"
)

// ManifestPath is the deployed location of the island manifest.
const ManifestPath = "/_dynamic.json"

// Generator renders website snapshots.
type Generator struct {
	registry   *component.Registry
	apiBaseURL string
}

// New creates a generator. The API base URL is injected into each page's
// site-config bootstrap for the hydration runtime.
func New(registry *component.Registry, apiBaseURL string) *Generator {
	if registry == nil {
		registry = component.Default()
	}
	return &Generator{registry: registry, apiBaseURL: strings.TrimRight(apiBaseURL, "/")}
}

// Result is one generation's output: the ordered artifact set and the island
// manifest backing /_dynamic.json.
type Result struct {
	Artifacts []artifact.Artifact
	Manifest  *IslandManifest

	// StylesPath and ScriptsPath are the content-addressed asset locations
	// referenced by every generated document.
	StylesPath  string
	ScriptsPath string
}

// Generate renders the full artifact set for a snapshot. It fails only on
// structural problems (missing snapshot, colliding page paths); malformed
// components degrade to minimal markup instead.
func (g *Generator) Generate(snapshot *site.Snapshot) (*Result, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("generate: snapshot is required")
	}

	styles := buildStylesheet(snapshot.Website.CustomCSS)
	scripts := buildScript(snapshot.Website.CustomJS)
	stylesPath := artifact.HashedAssetPath("styles", ".css", styles)
	scriptsPath := artifact.HashedAssetPath("scripts", ".js", scripts)

	pages := append([]site.Page(nil), snapshot.Pages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })

	manifest := &IslandManifest{}
	seen := make(map[string]string)
	var artifacts []artifact.Artifact

	for _, page := range pages {
		path := PagePath(page.Slug)
		if prev, ok := seen[path]; ok {
			return nil, fmt.Errorf("generate: pages %q and %q both map to %s", prev, page.Slug, path)
		}
		seen[path] = page.Slug

		body := g.renderComponents(page.Components, page.Slug, manifest)
		doc := g.assembleDocument(&snapshot.Website, &page, body, stylesPath, scriptsPath)
		artifacts = append(artifacts, artifact.New(path, []byte(doc)))
	}

	artifacts = append(artifacts,
		artifact.New(stylesPath, styles),
		artifact.New(scriptsPath, scripts),
	)

	manifestJSON, err := manifest.ToJSON()
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, artifact.New(ManifestPath, manifestJSON))

	slog.Debug("Site generated",
		"website_id", snapshot.Website.ID,
		"pages", len(pages),
		"islands", manifest.Count(),
		"artifacts", len(artifacts))

	return &Result{
		Artifacts:   artifacts,
		Manifest:    manifest,
		StylesPath:  stylesPath,
		ScriptsPath: scriptsPath,
	}, nil
}

// renderComponents renders a component list to HTML, appending an island
// manifest entry for every dynamic occurrence.
func (g *Generator) renderComponents(components []site.Component, pageSlug string, manifest *IslandManifest) string {
	var b strings.Builder
	for _, c := range components {
		b.WriteString(g.renderComponent(c, pageSlug, manifest))
	}
	return b.String()
}

func (g *Generator) renderComponent(c site.Component, pageSlug string, manifest *IslandManifest) string {
	if g.registry.IsDynamic(c.Type) {
		props := c.Props
		if props == nil {
			props = map[string]any{}
		}
		manifest.Append(IslandEntry{Type: c.Type, Page: pageSlug, Props: props})
		return renderPlaceholder(c.Type, props)
	}

	children := g.renderComponents(c.Children, pageSlug, manifest)
	return g.registry.RenderStatic(c.Type, c.Props, children)
}

// renderPlaceholder emits the hydration placeholder: the type tag and
// serialized props the runtime scans for, plus a loading-state child.
func renderPlaceholder(typ string, props map[string]any) string {
	serialized, err := json.Marshal(props)
	if err != nil {
		// Unserializable props degrade to an empty object; the island still
		// hydrates, just without its configuration.
		slog.Warn("Island props not serializable", "component", typ, "error", err)
		serialized = []byte("{}")
	}
	return `<div class="sp-island" data-component="` + html.EscapeString(typ) +
		`" data-props="` + html.EscapeString(string(serialized)) +
		`"><div class="sp-island-loading">Loading...</div></div>`
}

// assembleDocument wraps a rendered body in the fixed document shell.
func (g *Generator) assembleDocument(w *site.Website, page *site.Page, body, stylesPath, scriptsPath string) string {
	title := page.Title
	if title == "" {
		title = w.Name
	}
	description := page.MetaDescription
	if description == "" {
		description = w.Description
	}

	cfg, _ := json.Marshal(map[string]string{
		"apiBaseUrl": g.apiBaseURL,
		"siteId":     w.ID,
	})

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	if description != "" {
		b.WriteString("<meta name=\"description\" content=\"" + html.EscapeString(description) + "\">\n")
	}
	b.WriteString("<link rel=\"stylesheet\" href=\"" + stylesPath + "\">\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n<script src=\"" + scriptsPath + "\"></script>\n")
	b.WriteString("<script>window.__SITEPRESS__=" + string(cfg) + ";Sitepress.hydrate();</script>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// buildStylesheet is the shared CSS: reset + base component styles, with the
// website's custom CSS appended verbatim.
func buildStylesheet(customCSS string) []byte {
	if customCSS == "" {
		return []byte(baseCSS)
	}
	return []byte(baseCSS + "\n/* custom */\n" + customCSS + "\n")
}

// buildScript is the shared JS: the hydration runtime, with the website's
// custom JS appended verbatim.
func buildScript(customJS string) []byte {
	if customJS == "" {
		return []byte(hydrationJS)
	}
	return []byte(hydrationJS + "\n/* custom */\n" + customJS + "\n")
}
