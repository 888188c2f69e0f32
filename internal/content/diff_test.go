package content

import (
	"reflect"
	"testing"
)

func TestDiffOfDefaultsIsEmpty(t *testing.T) {
	for _, pt := range PageTypes() {
		diff := SectionDifferences(DefaultsFor(pt), pt)
		if len(diff) != 0 {
			t.Fatalf("%s: diff of pristine defaults = %#v, want empty", pt, diff)
		}
	}
}

func TestDiffEmitsOnlyChangedFields(t *testing.T) {
	merged := DefaultsFor(PageHome)
	merged["hero"]["title"] = "Our Story"
	merged["stats"][visibleField] = false

	diff := SectionDifferences(merged, PageHome)

	want := PageSections{
		"hero":  {"title": "Our Story"},
		"stats": {visibleField: false},
	}
	if !reflect.DeepEqual(diff, want) {
		t.Fatalf("diff = %#v, want %#v", diff, want)
	}
}

func TestDiffKeepsUnknownSections(t *testing.T) {
	merged := DefaultsFor(PageHome)
	merged["legacy"] = SectionData{"text": "still here"}

	diff := SectionDifferences(merged, PageHome)
	if !reflect.DeepEqual(diff["legacy"], SectionData{"text": "still here"}) {
		t.Fatalf("unknown section dropped from diff: %#v", diff)
	}
}

func TestDiffThenMergeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		doc  OverrideDocument
	}{
		{name: "empty", doc: OverrideDocument{}},
		{name: "scalar_override", doc: OverrideDocument{PageHome: {"hero": {"title": "T"}}}},
		{
			name: "array_override",
			doc: OverrideDocument{PageFAQ: {"cards": {"items": []any{
				map[string]any{"question": "Q1", "answer": "A1"},
			}}}},
		},
		{
			name: "visibility_and_scalars",
			doc: OverrideDocument{PageHome: {
				"hero":  {visibleField: false, "subtitle": "S"},
				"stats": {"showPages": true},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, pt := range PageTypes() {
				merged := MergedSectionsFor(tc.doc, pt)
				rebuilt := MergedSectionsFor(OverrideDocument{pt: SectionDifferences(merged, pt)}, pt)
				if !reflect.DeepEqual(rebuilt, merged) {
					t.Fatalf("%s/%s: diff-then-merge diverged\n got: %#v\nwant: %#v", tc.name, pt, rebuilt, merged)
				}
			}
		})
	}
}

func TestDiffMinimality(t *testing.T) {
	// A single changed field in one section must not drag its siblings
	// into the persisted override.
	merged := DefaultsFor(PageHome)
	merged["hero"]["title"] = "Changed"

	diff := SectionDifferences(merged, PageHome)
	if len(diff) != 1 {
		t.Fatalf("diff spans %d sections, want 1", len(diff))
	}
	if len(diff["hero"]) != 1 {
		t.Fatalf("hero diff has %d fields, want 1: %#v", len(diff["hero"]), diff["hero"])
	}
}

func TestJSONEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "equal_strings", a: "x", b: "x", want: true},
		{name: "different_strings", a: "x", b: "y", want: false},
		{name: "equal_numbers", a: float64(3), b: float64(3), want: true},
		{name: "int_vs_float_serialize_same", a: 3, b: float64(3), want: true},
		{name: "equal_arrays", a: []any{"a", "b"}, b: []any{"a", "b"}, want: true},
		{name: "reordered_arrays_differ", a: []any{"a", "b"}, b: []any{"b", "a"}, want: false},
		{
			name: "maps_compare_by_content",
			a:    map[string]any{"x": 1, "y": 2},
			b:    map[string]any{"y": 2, "x": 1},
			want: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := jsonEqual(tc.a, tc.b); got != tc.want {
				t.Fatalf("jsonEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
