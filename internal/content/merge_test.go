package content

import (
	"reflect"
	"testing"
)

func TestMergedSectionsForDefaults(t *testing.T) {
	cases := []struct {
		name string
		doc  OverrideDocument
	}{
		{name: "nil_document", doc: nil},
		{name: "empty_document", doc: OverrideDocument{}},
		{name: "other_page_only", doc: OverrideDocument{PageFAQ: {"header": {"title": "Q"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergedSectionsFor(tc.doc, PageHome)
			if !reflect.DeepEqual(merged, DefaultsFor(PageHome)) {
				t.Fatalf("merged sections differ from defaults: %#v", merged)
			}
			if !ValidatePageSections(merged, PageHome) {
				t.Fatalf("merged defaults failed validation")
			}
		})
	}
}

func TestMergeOverridePrecedence(t *testing.T) {
	doc := OverrideDocument{
		PageHome: {
			"hero": {"title": "Our Story"},
		},
	}
	merged := MergedSectionsFor(doc, PageHome)

	if got := merged["hero"]["title"]; got != "Our Story" {
		t.Fatalf("hero.title = %v, want Our Story", got)
	}
	// Untouched sibling fields backfill from defaults.
	if got := merged["hero"]["subtitle"]; got != defaultSections[PageHome]["hero"]["subtitle"] {
		t.Fatalf("hero.subtitle = %v, want default", got)
	}
	if got, ok := merged["hero"][visibleField].(bool); !ok || !got {
		t.Fatalf("hero.visible = %v, want true", merged["hero"][visibleField])
	}
}

func TestMergeArraysReplaceWholesale(t *testing.T) {
	override := []any{map[string]any{"question": "X", "answer": "Y"}}
	doc := OverrideDocument{
		PageFAQ: {
			"cards": {"items": override},
		},
	}
	merged := MergedSectionsFor(doc, PageFAQ)
	items, ok := merged["cards"]["items"].([]any)
	if !ok {
		t.Fatalf("cards.items is %T, want []any", merged["cards"]["items"])
	}
	if len(items) != 1 {
		t.Fatalf("cards.items has %d entries, want 1 (arrays replace, not merge)", len(items))
	}
	if !reflect.DeepEqual(items, override) {
		t.Fatalf("cards.items = %#v, want override verbatim", items)
	}
}

func TestMergeNestedObjects(t *testing.T) {
	doc := OverrideDocument{
		PageHome: {
			"stats": {"showPhotos": false},
		},
	}
	merged := MergedSectionsFor(doc, PageHome)
	if got := merged["stats"]["showPhotos"]; got != false {
		t.Fatalf("stats.showPhotos = %v, want false", got)
	}
	if got := merged["stats"]["showMembers"]; got != true {
		t.Fatalf("stats.showMembers = %v, want default true", got)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	doc := OverrideDocument{
		PageHome: {
			"hero": {"title": "Aliased?"},
		},
	}
	merged := MergedSectionsFor(doc, PageHome)
	merged["hero"]["title"] = "mutated"
	merged["navigation"]["title"] = "mutated"

	if doc[PageHome]["hero"]["title"] != "Aliased?" {
		t.Fatalf("merge aliased the override document")
	}
	if defaultSections[PageHome]["navigation"]["title"] == "mutated" {
		t.Fatalf("merge aliased the registry defaults")
	}
}

func TestMergeCarriesUnknownSections(t *testing.T) {
	doc := OverrideDocument{
		PageHome: {
			"legacy": {"text": "still here", visibleField: false},
		},
	}
	merged := MergedSectionsFor(doc, PageHome)
	if merged["legacy"]["text"] != "still here" {
		t.Fatalf("unknown section dropped by merge")
	}
}

func TestValidatePageSections(t *testing.T) {
	cases := []struct {
		name     string
		sections PageSections
		want     bool
	}{
		{name: "full_defaults", sections: DefaultsFor(PageHome), want: true},
		{name: "nil_sections", sections: nil, want: false},
		{name: "missing_section", sections: PageSections{"hero": {visibleField: true}}, want: false},
		{
			name: "visible_wrong_type",
			sections: func() PageSections {
				s := DefaultsFor(PageHome)
				s["hero"][visibleField] = "yes"
				return s
			}(),
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatePageSections(tc.sections, PageHome); got != tc.want {
				t.Fatalf("ValidatePageSections = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMergeCompletenessUnderMalformedOverrides(t *testing.T) {
	// Property: whatever object shape the override document has, the
	// merged result validates.
	cases := []struct {
		name string
		doc  OverrideDocument
	}{
		{name: "nil_section", doc: OverrideDocument{PageHome: {"hero": nil}}},
		{name: "wrong_typed_field", doc: OverrideDocument{PageHome: {"hero": {"title": float64(42)}}}},
		{name: "visible_overridden_non_bool", doc: OverrideDocument{PageHome: {"stats": {"showMembers": "nope"}}}},
		{name: "unknown_page_sections", doc: OverrideDocument{PageHome: {"zzz": {"a": 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, pt := range PageTypes() {
				if !ValidatePageSections(MergedSectionsFor(tc.doc, pt), pt) {
					t.Fatalf("merge of %s not complete for %v", tc.name, pt)
				}
			}
		})
	}
}

func TestSectionVisibleFollowsDefault(t *testing.T) {
	merged := MergedSectionsFor(nil, PageHome)
	if !SectionVisible(merged, "hero") {
		t.Fatalf("hero should default visible")
	}

	doc := OverrideDocument{PageHome: {"hero": {visibleField: false}}}
	merged = MergedSectionsFor(doc, PageHome)
	if SectionVisible(merged, "hero") {
		t.Fatalf("hero override visible=false not honored")
	}
}
