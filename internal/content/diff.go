package content

import (
	"bytes"
	"encoding/json"
)

// Diff engine. The persisted override document must never restate the
// defaults: it holds the minimal diff, so that later changes to the
// compiled defaults propagate to every logbook that never customized
// the affected field.

// SectionDifferences compares a fully-merged section tree against the
// registry defaults for pt and returns the minimal override: only the
// top-level section fields whose values differ. Sections identical to
// their default are omitted entirely. Section keys unknown to the
// registry are kept whole.
func SectionDifferences(merged PageSections, pt PageType) PageSections {
	diff := PageSections{}
	for key, data := range merged {
		if data == nil {
			continue
		}
		base, known := defaultSection(pt, key)
		if !known {
			diff[key] = SectionData(cloneMap(data))
			continue
		}
		sectionDiff := SectionData{}
		for field, value := range data {
			baseVal, exists := base[field]
			if !exists || !jsonEqual(baseVal, value) {
				sectionDiff[field] = cloneValue(value)
			}
		}
		if len(sectionDiff) > 0 {
			diff[key] = sectionDiff
		}
	}
	return diff
}

// jsonEqual compares two values by their JSON serialization. Content
// fields are flat scalars, strings, and small arrays, so serialization
// equality is sufficient; differently-ordered object keys marshal
// identically for Go maps, and anything unmarshalable compares unequal.
func jsonEqual(a, b any) bool {
	ab, aErr := json.Marshal(a)
	bb, bErr := json.Marshal(b)
	if aErr != nil || bErr != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
