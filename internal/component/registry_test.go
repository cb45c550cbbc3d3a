package component

import (
	"strings"
	"testing"
)

func TestDefaultRegistryClassification(t *testing.T) {
	r := Default()

	if r.Kind("hero") != KindStatic {
		t.Error("hero should be static")
	}
	if r.Kind("product-list") != KindDynamic {
		t.Error("product-list should be dynamic")
	}
	// Unknown types fall through to static rendering.
	if r.Kind("totally-new-widget") != KindStatic {
		t.Error("unknown types should be static")
	}
}

func TestDynamicTypesSorted(t *testing.T) {
	types := Default().DynamicTypes()
	if len(types) != 5 {
		t.Fatalf("expected 5 dynamic types, got %d: %v", len(types), types)
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Errorf("dynamic types not sorted: %v", types)
		}
	}
}

func TestRenderHeroEscapesProps(t *testing.T) {
	out := Default().RenderStatic("hero", map[string]any{
		"heading": `<script>alert("x")</script>`,
	}, "")
	if strings.Contains(out, "<script>") {
		t.Errorf("props must be escaped, got %q", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("expected escaped heading, got %q", out)
	}
}

func TestRenderUnknownTypeFallsBack(t *testing.T) {
	out := Default().RenderStatic("mystery", nil, "<span>child</span>")
	if !strings.Contains(out, `data-type="mystery"`) {
		t.Errorf("expected fallback block, got %q", out)
	}
	if !strings.Contains(out, "<span>child</span>") {
		t.Errorf("expected children preserved, got %q", out)
	}
}

func TestRenderMalformedPropsDegrade(t *testing.T) {
	// Wrong prop types must not panic or error, just degrade.
	out := Default().RenderStatic("features", map[string]any{"items": "not-a-list"}, "")
	if !strings.Contains(out, "sp-features") {
		t.Errorf("expected empty features section, got %q", out)
	}

	out = Default().RenderStatic("image", map[string]any{"src": 42}, "")
	if !strings.Contains(out, "sp-image-empty") {
		t.Errorf("expected empty image placeholder, got %q", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := Default().RenderStatic("markdown", map[string]any{"content": "# Title\n\nbody"}, "")
	if !strings.Contains(out, "<h1") {
		t.Errorf("expected rendered markdown heading, got %q", out)
	}
}

func TestRenderFeatures(t *testing.T) {
	out := Default().RenderStatic("features", map[string]any{
		"items": []any{
			map[string]any{"title": "Fast", "description": "Very fast"},
			map[string]any{"title": "Cheap", "description": "Very cheap"},
		},
	}, "")
	if strings.Count(out, "sp-feature\"") != 2 {
		t.Errorf("expected two feature blocks, got %q", out)
	}
}
