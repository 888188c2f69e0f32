package content

// Merge engine. MergedSectionsFor backfills a sparse override document
// with the compiled defaults so that rendering always sees a complete
// section tree. Maps merge key by key, recursively. Arrays and scalars
// in the override replace the default wholesale: merging arrays
// element-wise would silently blend unrelated list items (FAQ cards,
// navigation links) and corrupt authoring intent.

// MergedSectionsFor merges doc's overrides for pt onto the defaults.
// A nil document, or one with no entry for pt, yields the defaults.
// The result is always a fresh tree; neither doc nor the registry is
// aliased by it.
func MergedSectionsFor(doc OverrideDocument, pt PageType) PageSections {
	merged := DefaultsFor(pt)
	if doc == nil {
		return merged
	}
	overrides, ok := doc[pt]
	if !ok || overrides == nil {
		return merged
	}
	for key, section := range overrides {
		if section == nil {
			continue
		}
		if base, ok := merged[key]; ok {
			merged[key] = SectionData(deepMerge(base, section))
		} else {
			// Section unknown to the registry: carry it through so
			// stale override data round-trips instead of vanishing.
			merged[key] = SectionData(cloneMap(section))
		}
	}
	return merged
}

// ValidatePageSections reports whether sections is a complete, usable
// tree for pt: every registry section is present and carries a boolean
// visible field. It never panics on malformed input; it just returns
// false.
func ValidatePageSections(sections PageSections, pt PageType) bool {
	defaults, ok := defaultSections[pt]
	if !ok || sections == nil {
		return false
	}
	for key := range defaults {
		data, present := sections[key]
		if !present || data == nil {
			return false
		}
		if _, ok := data[visibleField].(bool); !ok {
			return false
		}
	}
	return true
}

// SectionVisible reads a section's merged visible flag. Sections with
// no entry fall back to true, which only happens for section keys the
// registry does not define (registry sections always inherit their
// default's visible value through the merge).
func SectionVisible(sections PageSections, key SectionKey) bool {
	data, ok := sections[key]
	if !ok {
		return true
	}
	if v, ok := data[visibleField].(bool); ok {
		return v
	}
	return true
}

// deepMerge merges override onto base and returns a fresh map. Both
// inputs are left untouched.
func deepMerge(base, override map[string]any) map[string]any {
	result := cloneMap(base)
	for k, overrideVal := range override {
		if baseVal, exists := result[k]; exists {
			baseMap, baseIsMap := baseVal.(map[string]any)
			overrideMap, overrideIsMap := overrideVal.(map[string]any)
			if baseIsMap && overrideIsMap {
				result[k] = deepMerge(baseMap, overrideMap)
				continue
			}
		}
		result[k] = cloneValue(overrideVal)
	}
	return result
}

// cloneMap deep-copies a JSON-shaped map.
func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case SectionData:
		return cloneMap(tv)
	case []any:
		return cloneSlice(tv)
	default:
		return v
	}
}
