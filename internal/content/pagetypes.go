package content

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// PageType names one logical page within a logbook.
type PageType string

const (
	PageHome    PageType = "home"
	PageHelp    PageType = "help"
	PageGallery PageType = "gallery"
	PageVault   PageType = "vault"
	PageFAQ     PageType = "faq"
	PageAdmin   PageType = "admin"
)

// SectionKey names one section of a page. The valid keys per page type
// are fixed at compile time by the section registry in defaults.go.
type SectionKey string

// SectionData is the dynamically-typed content of a single section.
// Every section carries a boolean "visible" field; everything else is
// free-form JSON (strings, numbers, booleans, nested objects, arrays).
type SectionData map[string]any

// PageSections maps each section of one page to its content.
type PageSections map[SectionKey]SectionData

// OverrideDocument is the persisted per-logbook customization document:
// for each page type a sparse PageSections holding only the fields that
// differ from the compiled defaults. Pages and sections a logbook never
// customized are simply absent.
type OverrideDocument map[PageType]PageSections

const visibleField = "visible"

// KnownPageType reports whether the registry defines pt.
func KnownPageType(pt PageType) bool {
	_, ok := defaultSections[pt]
	return ok
}

// PageTypes returns every page type the registry defines.
func PageTypes() []PageType {
	out := make([]PageType, 0, len(defaultSections))
	for _, pt := range pageOrder {
		out = append(out, pt)
	}
	return out
}

// DecodeOverrides parses the raw JSONB column into an OverrideDocument.
// A null, empty, or absent column yields an empty document. Malformed
// JSON is an error; the caller decides whether to treat it as empty.
func DecodeOverrides(raw datatypes.JSON) (OverrideDocument, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return OverrideDocument{}, nil
	}
	var doc OverrideDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = OverrideDocument{}
	}
	return doc, nil
}

// EncodeOverrides serializes the override document back to the raw
// JSONB representation.
func EncodeOverrides(doc OverrideDocument) (datatypes.JSON, error) {
	if doc == nil {
		doc = OverrideDocument{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
