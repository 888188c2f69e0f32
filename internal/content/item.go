package content

import "strings"

// ContentType classifies a content field for editing surfaces.
type ContentType string

const (
	TypeText     ContentType = "text"
	TypeTextarea ContentType = "textarea"
	TypeImage    ContentType = "image"
	TypeBoolean  ContentType = "boolean"
	TypeArray    ContentType = "array"
	TypeNumber   ContentType = "number"
)

// ContentItem is one addressable content field: its current value and
// its editing type.
type ContentItem struct {
	Value any         `json:"value"`
	Type  ContentType `json:"type"`
}

// TypeForPath derives the editing type for a path from the registry
// default at that path. Deriving from the declared default rather than
// the live value keeps a field's type stable even when its value is
// transiently empty (an empty string is still an image field if its
// default is an image URL). Paths absent from the registry, such as
// appended FAQ card fields, fall back to inference from the live value.
func TypeForPath(pt PageType, path string, liveValue any) ContentType {
	defaults, ok := defaultSections[pt]
	if ok {
		if defVal, found := Value(pageSectionsAsMap(defaults), path); found {
			return InferType(defVal)
		}
	}
	return InferType(liveValue)
}

// InferType classifies a raw JSON value.
func InferType(v any) ContentType {
	switch tv := v.(type) {
	case bool:
		return TypeBoolean
	case float64, int, int64:
		return TypeNumber
	case []any:
		return TypeArray
	case string:
		if strings.HasPrefix(tv, "http://") || strings.HasPrefix(tv, "https://") {
			return TypeImage
		}
		if len(tv) > 120 || strings.Contains(tv, "\n") {
			return TypeTextarea
		}
		return TypeText
	default:
		return TypeText
	}
}

// FlattenItems produces the path -> ContentItem map a content editor
// hydrates from: every leaf (and every array subtree) of the merged
// sections, typed from the registry.
func FlattenItems(pt PageType, sections PageSections) map[string]ContentItem {
	flat := Flatten(sections)
	items := make(map[string]ContentItem, len(flat))
	for path, value := range flat {
		items[path] = ContentItem{
			Value: value,
			Type:  TypeForPath(pt, path, value),
		}
	}
	return items
}

func pageSectionsAsMap(sections PageSections) map[string]any {
	out := make(map[string]any, len(sections))
	for k, v := range sections {
		out[string(k)] = map[string]any(v)
	}
	return out
}
