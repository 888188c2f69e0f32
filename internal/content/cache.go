package content

import (
	"context"
	"sync"
)

// PersistFunc pushes a single path write to durable storage. It is the
// seam between the page cache and the server-side content service; the
// service re-checks authorization on every call, so edit capability is
// never trusted from the cache.
type PersistFunc func(ctx context.Context, path string, value any) error

// PageCache is the editing state for one mounted page: the merged
// section tree flattened to path -> ContentItem, plus optimistic
// write-through with rollback. It is scoped to a single page's
// lifetime, not shared process-wide.
type PageCache struct {
	mu       sync.RWMutex
	pageType PageType
	items    map[string]ContentItem
	editable bool
	persist  PersistFunc
}

// NewPageCache hydrates a cache from merged sections. editable is the
// caller's role check (parent or not) at hydration time; persisted
// writes are still re-authorized server-side.
func NewPageCache(pt PageType, merged PageSections, editable bool, persist PersistFunc) *PageCache {
	return &PageCache{
		pageType: pt,
		items:    FlattenItems(pt, merged),
		editable: editable,
		persist:  persist,
	}
}

// Get returns the value at path, or fallback when the path has no
// entry.
func (pc *PageCache) Get(path string, fallback any) any {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if item, ok := pc.items[path]; ok {
		return item.Value
	}
	return fallback
}

// Item returns the full ContentItem at path.
func (pc *PageCache) Item(path string) (ContentItem, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	item, ok := pc.items[path]
	return item, ok
}

// Len reports how many paths are hydrated.
func (pc *PageCache) Len() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.items)
}

// Update optimistically writes value at path, then persists it. On
// persistence failure the previous entry is restored (or removed, if
// the path did not exist before) and the error is returned.
func (pc *PageCache) Update(ctx context.Context, path string, value any) error {
	pc.mu.Lock()
	prev, existed := pc.items[path]
	pc.items[path] = ContentItem{
		Value: value,
		Type:  TypeForPath(pc.pageType, path, value),
	}
	pc.mu.Unlock()

	if pc.persist == nil {
		return nil
	}
	if err := pc.persist(ctx, path, value); err != nil {
		pc.mu.Lock()
		if existed {
			pc.items[path] = prev
		} else {
			delete(pc.items, path)
		}
		pc.mu.Unlock()
		return err
	}
	return nil
}

// IsSectionVisible reads the section's visible flag from the hydrated
// map. A missing entry reads as visible; registry sections always have
// an entry, so this fallback only applies to unknown section keys.
func (pc *PageCache) IsSectionVisible(sectionPath string) bool {
	v := pc.Get(sectionPath+"."+visibleField, true)
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// ToggleSectionVisibility flips the section's visible flag through the
// normal update path.
func (pc *PageCache) ToggleSectionVisibility(ctx context.Context, sectionPath string) error {
	visible := pc.IsSectionVisible(sectionPath)
	return pc.Update(ctx, sectionPath+"."+visibleField, !visible)
}

// CanEdit reports whether the cache's principal may edit. The path
// argument exists for call-site symmetry with Get/Update but is
// ignored: edit capability is role-wide, with no per-section
// granularity.
func (pc *PageCache) CanEdit(path string) bool {
	_ = path
	return pc.editable
}
