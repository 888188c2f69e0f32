package content

import (
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		want    []Segment
		wantErr bool
	}{
		{name: "single_key", path: "hero", want: []Segment{{Key: "hero"}}},
		{name: "nested", path: "hero.title", want: []Segment{{Key: "hero"}, {Key: "title"}}},
		{
			name: "array_index",
			path: "cards.items.2.question",
			want: []Segment{{Key: "cards"}, {Key: "items"}, {Index: 2, IsIndex: true}, {Key: "question"}},
		},
		{name: "empty", path: "", wantErr: true},
		{name: "empty_segment", path: "a..b", wantErr: true},
		{name: "negative_number_is_key", path: "a.-1", want: []Segment{{Key: "a"}, {Key: "-1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePath(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) succeeded, want error", tc.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q): %v", tc.path, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParsePath(%q) = %#v, want %#v", tc.path, got, tc.want)
			}
			if JoinPath(got) != tc.path {
				t.Fatalf("JoinPath round trip = %q, want %q", JoinPath(got), tc.path)
			}
		})
	}
}

func TestSetValueCreatesIntermediates(t *testing.T) {
	got, err := SetValue(map[string]any{}, "a.b.c", 5)
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": map[string]any{"c": 5}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SetValue = %#v, want %#v", got, want)
	}
}

func TestSetValueIsPure(t *testing.T) {
	doc := map[string]any{
		"hero": map[string]any{"title": "before", "tags": []any{"a", "b"}},
	}
	snapshot := cloneMap(doc)

	out, err := SetValue(doc, "hero.title", "after")
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if !reflect.DeepEqual(doc, snapshot) {
		t.Fatalf("SetValue mutated its input: %#v", doc)
	}
	if out["hero"].(map[string]any)["title"] != "after" {
		t.Fatalf("SetValue result missing write")
	}

	// Deep write into the result must not leak back either.
	out["hero"].(map[string]any)["tags"].([]any)[0] = "mutated"
	if doc["hero"].(map[string]any)["tags"].([]any)[0] != "a" {
		t.Fatalf("SetValue result aliases input arrays")
	}
}

func TestSetValueArrays(t *testing.T) {
	base := map[string]any{
		"cards": map[string]any{
			"items": []any{
				map[string]any{"question": "Q0"},
				map[string]any{"question": "Q1"},
			},
		},
	}
	cases := []struct {
		name  string
		path  string
		value any
		check func(t *testing.T, out map[string]any)
	}{
		{
			name:  "in_range_index",
			path:  "cards.items.1.question",
			value: "edited",
			check: func(t *testing.T, out map[string]any) {
				items := out["cards"].(map[string]any)["items"].([]any)
				if items[1].(map[string]any)["question"] != "edited" {
					t.Fatalf("index write missed: %#v", items)
				}
				if items[0].(map[string]any)["question"] != "Q0" {
					t.Fatalf("sibling element disturbed: %#v", items)
				}
			},
		},
		{
			name:  "append_at_len",
			path:  "cards.items.2.question",
			value: "appended",
			check: func(t *testing.T, out map[string]any) {
				items := out["cards"].(map[string]any)["items"].([]any)
				if len(items) != 3 {
					t.Fatalf("len = %d, want 3", len(items))
				}
				if items[2].(map[string]any)["question"] != "appended" {
					t.Fatalf("appended element wrong: %#v", items[2])
				}
			},
		},
		{
			name:  "out_of_range_grows_with_nulls",
			path:  "cards.items.4",
			value: "sparse",
			check: func(t *testing.T, out map[string]any) {
				items := out["cards"].(map[string]any)["items"].([]any)
				if len(items) != 5 {
					t.Fatalf("len = %d, want 5", len(items))
				}
				if items[2] != nil || items[3] != nil {
					t.Fatalf("gap not null-filled: %#v", items)
				}
				if items[4] != "sparse" {
					t.Fatalf("items[4] = %v", items[4])
				}
			},
		},
		{
			name:  "string_key_replaces_array_with_object",
			path:  "cards.items.first",
			value: "x",
			check: func(t *testing.T, out map[string]any) {
				items, ok := out["cards"].(map[string]any)["items"].(map[string]any)
				if !ok {
					t.Fatalf("items is %T, want object", out["cards"].(map[string]any)["items"])
				}
				if items["first"] != "x" {
					t.Fatalf("items.first = %v", items["first"])
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := SetValue(base, tc.path, tc.value)
			if err != nil {
				t.Fatalf("SetValue(%q): %v", tc.path, err)
			}
			tc.check(t, out)
		})
	}
}

func TestSetValueReplacesScalarIntermediate(t *testing.T) {
	doc := map[string]any{"hero": map[string]any{"title": "plain"}}
	out, err := SetValue(doc, "hero.title.style", "bold")
	if err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	title, ok := out["hero"].(map[string]any)["title"].(map[string]any)
	if !ok {
		t.Fatalf("scalar intermediate not promoted to object: %#v", out)
	}
	if title["style"] != "bold" {
		t.Fatalf("title.style = %v", title["style"])
	}
}

func TestDeleteValue(t *testing.T) {
	base := map[string]any{
		"hero": map[string]any{
			"title":    "T",
			"subtitle": "S",
		},
		"cards": map[string]any{
			"items": []any{"a", "b", "c"},
		},
	}
	cases := []struct {
		name  string
		path  string
		check func(t *testing.T, out map[string]any)
	}{
		{
			name: "object_key",
			path: "hero.title",
			check: func(t *testing.T, out map[string]any) {
				hero := out["hero"].(map[string]any)
				if _, ok := hero["title"]; ok {
					t.Fatalf("hero.title still present: %#v", hero)
				}
				if hero["subtitle"] != "S" {
					t.Fatalf("sibling key disturbed: %#v", hero)
				}
			},
		},
		{
			name: "array_element_splices",
			path: "cards.items.1",
			check: func(t *testing.T, out map[string]any) {
				items := out["cards"].(map[string]any)["items"].([]any)
				if !reflect.DeepEqual(items, []any{"a", "c"}) {
					t.Fatalf("items = %#v, want [a c]", items)
				}
			},
		},
		{
			name: "missing_path_is_noop",
			path: "hero.tagline",
			check: func(t *testing.T, out map[string]any) {
				if !reflect.DeepEqual(out, base) {
					t.Fatalf("missing-path delete changed the document: %#v", out)
				}
			},
		},
		{
			name: "index_out_of_range_is_noop",
			path: "cards.items.9",
			check: func(t *testing.T, out map[string]any) {
				if !reflect.DeepEqual(out, base) {
					t.Fatalf("out-of-range delete changed the document: %#v", out)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot := cloneMap(base)
			out, err := DeleteValue(base, tc.path)
			if err != nil {
				t.Fatalf("DeleteValue(%q): %v", tc.path, err)
			}
			if !reflect.DeepEqual(base, snapshot) {
				t.Fatalf("DeleteValue mutated its input: %#v", base)
			}
			tc.check(t, out)
		})
	}

	if _, err := DeleteValue(base, ""); err == nil {
		t.Fatalf("DeleteValue with empty path succeeded, want error")
	}
}

func TestValue(t *testing.T) {
	doc := map[string]any{
		"hero": map[string]any{
			"title": "T",
			"tags":  []any{"a", "b"},
		},
	}
	cases := []struct {
		name  string
		path  string
		want  any
		found bool
	}{
		{name: "leaf", path: "hero.title", want: "T", found: true},
		{name: "array_element", path: "hero.tags.1", want: "b", found: true},
		{name: "whole_subtree", path: "hero", want: doc["hero"], found: true},
		{name: "missing", path: "hero.subtitle", found: false},
		{name: "index_out_of_range", path: "hero.tags.9", found: false},
		{name: "index_into_scalar", path: "hero.title.0", found: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := Value(doc, tc.path)
			if found != tc.found {
				t.Fatalf("Value(%q) found=%v, want %v", tc.path, found, tc.found)
			}
			if found && !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Value(%q) = %#v, want %#v", tc.path, got, tc.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	sections := PageSections{
		"hero": {
			visibleField: true,
			"title":      "T",
		},
		"cards": {
			"items": []any{
				map[string]any{"question": "Q0"},
			},
		},
	}
	flat := Flatten(sections)

	if flat["hero.title"] != "T" {
		t.Fatalf("hero.title = %v", flat["hero.title"])
	}
	if flat["hero.visible"] != true {
		t.Fatalf("hero.visible = %v", flat["hero.visible"])
	}
	if _, ok := flat["cards.items"].([]any); !ok {
		t.Fatalf("array subtree not addressable as a whole")
	}
	if flat["cards.items.0.question"] != "Q0" {
		t.Fatalf("array element leaf missing: %v", SortedPaths(flat))
	}
}
