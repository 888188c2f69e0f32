package content

// Section registry: the compiled defaults for every page type. This is
// the single source of truth for which sections exist on which page and
// what a section looks like before a logbook customizes anything.
// Adding a section means adding its default here; there is no runtime
// registration.

var pageOrder = []PageType{PageHome, PageHelp, PageGallery, PageVault, PageFAQ, PageAdmin}

var defaultSections = map[PageType]PageSections{
	PageHome: {
		"hero": {
			visibleField:      true,
			"title":           "Welcome to Our Family Logbook",
			"subtitle":        "A shared place for the moments that matter",
			"backgroundImage": "https://storage.googleapis.com/logbook-assets/defaults/hero.jpg",
			"buttonLabel":     "Start Reading",
		},
		"navigation": {
			visibleField: true,
			"title":      "Explore",
			"links": []any{
				map[string]any{"label": "Gallery", "target": "gallery"},
				map[string]any{"label": "Questions", "target": "faq"},
				map[string]any{"label": "Help", "target": "help"},
			},
		},
		"stats": {
			visibleField:  true,
			"title":       "Our Story So Far",
			"showMembers": true,
			"showPhotos":  true,
			"showPages":   false,
		},
		"memories": {
			visibleField:  true,
			"title":       "Recent Memories",
			"description": "The latest entries from everyone in the family.",
			"maxItems":    float64(6),
		},
	},
	PageHelp: {
		"intro": {
			visibleField:  true,
			"title":       "How This Works",
			"description": "Everything you need to know about keeping the logbook together.",
		},
		"registry": {
			visibleField:  true,
			"title":       "Family Registry",
			"description": "Who is who, and how to reach them.",
		},
		"contact": {
			visibleField: true,
			"title":      "Need a Hand?",
			"email":      "",
			"note":       "Reach out to a parent of this logbook for access questions.",
		},
	},
	PageGallery: {
		"header": {
			visibleField: true,
			"title":      "Photo Gallery",
			"subtitle":   "Snapshots from along the way",
		},
		"grid": {
			visibleField:   true,
			"columns":      float64(3),
			"showCaptions": true,
		},
		"uploadPrompt": {
			visibleField: true,
			"title":      "Add a Photo",
			"hint":       "Anyone in the family can add to the gallery.",
		},
	},
	PageVault: {
		"header": {
			visibleField: true,
			"title":      "The Vault",
			"subtitle":   "Keepsakes and letters, sealed until the right moment",
		},
		"notice": {
			visibleField: true,
			"text":       "Entries in the vault are only visible to parents until they are released.",
		},
	},
	PageFAQ: {
		"header": {
			visibleField: true,
			"title":      "Questions & Answers",
			"subtitle":   "The things everyone asks",
		},
		"cards": {
			visibleField: true,
			"items": []any{
				map[string]any{
					"question": "Who can see our logbook?",
					"answer":   "Only people a parent has invited. Nothing here is public.",
				},
				map[string]any{
					"question": "Who can edit the pages?",
					"answer":   "Parents can edit every page. Family and friends can read and add photos.",
				},
				map[string]any{
					"question": "Can I change how a page looks?",
					"answer":   "Parents can edit titles, text, and images in place, and hide sections they do not want.",
				},
			},
		},
	},
	PageAdmin: {
		"header": {
			visibleField: true,
			"title":      "Logbook Settings",
		},
		"members": {
			visibleField: true,
			"title":      "Members",
			"showRoles":  true,
		},
		"invites": {
			visibleField: true,
			"title":      "Invitations",
			"note":       "Invite codes expire after seven days.",
		},
	},
}

// SectionKeysFor returns the ordered section keys the registry defines
// for pt, or nil for an unknown page type.
func SectionKeysFor(pt PageType) []SectionKey {
	sections, ok := defaultSections[pt]
	if !ok {
		return nil
	}
	keys := make([]SectionKey, 0, len(sections))
	for _, k := range sectionOrder[pt] {
		if _, present := sections[k]; present {
			keys = append(keys, k)
		}
	}
	return keys
}

// sectionOrder fixes a stable presentation order per page; map iteration
// order is not something rendering should depend on.
var sectionOrder = map[PageType][]SectionKey{
	PageHome:    {"hero", "navigation", "stats", "memories"},
	PageHelp:    {"intro", "registry", "contact"},
	PageGallery: {"header", "grid", "uploadPrompt"},
	PageVault:   {"header", "notice"},
	PageFAQ:     {"header", "cards"},
	PageAdmin:   {"header", "members", "invites"},
}

// DefaultsFor returns a deep copy of the default sections for pt so
// callers can never mutate the registry through the result.
func DefaultsFor(pt PageType) PageSections {
	sections, ok := defaultSections[pt]
	if !ok {
		return PageSections{}
	}
	out := make(PageSections, len(sections))
	for key, data := range sections {
		out[key] = SectionData(cloneMap(data))
	}
	return out
}

// defaultSection returns the registry default for one section without
// copying. Internal callers must treat the result as read-only.
func defaultSection(pt PageType, key SectionKey) (SectionData, bool) {
	sections, ok := defaultSections[pt]
	if !ok {
		return nil, false
	}
	data, ok := sections[key]
	return data, ok
}
