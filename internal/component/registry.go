// Package component classifies and renders website components. The registry
// is the single source of truth for which component types are server-backed:
// the page renderer and the island manifest builder both consult it, so the
// placeholder set and the manifest can never drift apart.
package component

import (
	"sort"
)

// Kind partitions component types into the static/dynamic split.
type Kind string

const (
	// KindStatic components render to final HTML at generation time.
	KindStatic Kind = "static"

	// KindDynamic components depend on server or catalog state at view time
	// and ship as hydration placeholders.
	KindDynamic Kind = "dynamic"
)

// StaticRenderer renders a static component's props (and its already-rendered
// children) to an HTML fragment. Renderers must be total: missing or
// malformed props degrade to minimal markup, never an error.
type StaticRenderer func(props map[string]any, childrenHTML string) string

// Registry maps component types to their kind and static renderer.
type Registry struct {
	static  map[string]StaticRenderer
	dynamic map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		static:  make(map[string]StaticRenderer),
		dynamic: make(map[string]struct{}),
	}
}

// RegisterStatic adds a static component type with its renderer.
func (r *Registry) RegisterStatic(typ string, render StaticRenderer) {
	r.static[typ] = render
}

// RegisterDynamic declares a server-backed component type.
func (r *Registry) RegisterDynamic(typ string) {
	r.dynamic[typ] = struct{}{}
}

// IsDynamic reports whether the type is server-backed.
func (r *Registry) IsDynamic(typ string) bool {
	_, ok := r.dynamic[typ]
	return ok
}

// Kind returns the classification of a component type. Unknown types are
// static: they fall through to the generic fallback renderer.
func (r *Registry) Kind(typ string) Kind {
	if r.IsDynamic(typ) {
		return KindDynamic
	}
	return KindStatic
}

// RenderStatic renders a static component. Unrecognized types degrade to the
// generic fallback so generation never fails on unknown input.
func (r *Registry) RenderStatic(typ string, props map[string]any, childrenHTML string) string {
	if render, ok := r.static[typ]; ok {
		return render(props, childrenHTML)
	}
	return renderFallback(typ, props, childrenHTML)
}

// DynamicTypes returns the sorted set of server-backed component types.
func (r *Registry) DynamicTypes() []string {
	types := make([]string, 0, len(r.dynamic))
	for typ := range r.dynamic {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Default returns the registry with the built-in component set: the static
// building blocks of the editor and the catalog/user-specific types that
// must hydrate client-side.
func Default() *Registry {
	r := NewRegistry()

	r.RegisterStatic("hero", renderHero)
	r.RegisterStatic("features", renderFeatures)
	r.RegisterStatic("text", renderText)
	r.RegisterStatic("markdown", renderMarkdown)
	r.RegisterStatic("image", renderImage)
	r.RegisterStatic("button", renderButton)
	r.RegisterStatic("divider", renderDivider)

	r.RegisterDynamic("product-list")
	r.RegisterDynamic("product-detail")
	r.RegisterDynamic("cart")
	r.RegisterDynamic("checkout")
	r.RegisterDynamic("contact-form")

	return r
}
