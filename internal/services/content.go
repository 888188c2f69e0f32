package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthside/logbook-backend/internal/clients/gcp"
	"github.com/hearthside/logbook-backend/internal/content"
	"github.com/hearthside/logbook-backend/internal/logger"
	"github.com/hearthside/logbook-backend/internal/platform/apierr"
	"github.com/hearthside/logbook-backend/internal/repos"
	"github.com/hearthside/logbook-backend/internal/requestdata"
	"github.com/hearthside/logbook-backend/internal/types"
)

const (
	msgLogbookNotFound = "Logbook not found or access denied"
	msgParentsOnly     = "Only parents can edit page content"
)

// writeRetries bounds the optimistic-version retry loop for content
// writes. Each retry re-reads the document, so a retry observes (and
// preserves) whatever the competing writer persisted.
const writeRetries = 3

// SectionCache is the read-path accelerator for merged sections. A nil
// cache disables caching; the service works without one.
type SectionCache interface {
	GetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType) (content.PageSections, bool)
	SetPageSections(ctx context.Context, logbookID uuid.UUID, pt content.PageType, sections content.PageSections)
	InvalidatePage(ctx context.Context, logbookID uuid.UUID, pt content.PageType)
}

type ContentService interface {
	GetLogbookPageSections(ctx context.Context, slug string, pt content.PageType) (content.PageSections, error)
	UpdatePageSection(ctx context.Context, slug string, pt content.PageType, key content.SectionKey, updates content.SectionData) error
	ToggleSectionVisibility(ctx context.Context, slug string, pt content.PageType, key content.SectionKey, visible bool) error
	ResetPageSection(ctx context.Context, slug string, pt content.PageType, key content.SectionKey) error
	GetLogbookContent(ctx context.Context, slug string, pt content.PageType) (map[string]content.ContentItem, error)
	UpdateLogbookContent(ctx context.Context, slug string, pt content.PageType, dotPath string, value any) error
	BatchUpdateLogbookContent(ctx context.Context, slug string, pt content.PageType, updates map[string]any) error
	SetContentImage(ctx context.Context, slug string, pt content.PageType, dotPath string, image io.Reader, contentType string) (string, error)
}

type contentService struct {
	db            *gorm.DB
	log           *logger.Logger
	logbookRepo   repos.LogbookRepo
	bucketService gcp.BucketService
	cache         SectionCache
}

func NewContentService(
	db *gorm.DB,
	log *logger.Logger,
	logbookRepo repos.LogbookRepo,
	bucketService gcp.BucketService,
	cache SectionCache,
) ContentService {
	return &contentService{
		db:            db,
		log:           log.With("service", "ContentService"),
		logbookRepo:   logbookRepo,
		bucketService: bucketService,
		cache:         cache,
	}
}

// resolveForUser maps (slug, caller) to the logbook and the caller's
// membership. A missing slug and a non-member caller are both reported
// as the same not-found error so that non-members cannot probe which
// logbooks exist.
func (cs *contentService) resolveForUser(ctx context.Context, slug string) (*types.Logbook, *types.Membership, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, nil, apierr.Unauthenticated("Not signed in")
	}
	logbook, membership, err := cs.logbookRepo.GetBySlugForUser(ctx, nil, slug, rd.UserID)
	if err != nil {
		return nil, nil, apierr.Persistence(fmt.Errorf("resolve logbook: %w", err))
	}
	if logbook == nil || membership == nil {
		return nil, nil, apierr.NotFound(msgLogbookNotFound)
	}
	return logbook, membership, nil
}

func (cs *contentService) decodeOverrides(logbook *types.Logbook) content.OverrideDocument {
	doc, err := content.DecodeOverrides(logbook.PageSections)
	if err != nil {
		// Malformed persisted data falls back to pristine defaults
		// rather than failing every page read.
		cs.log.Warn("Malformed page_sections document, treating as empty",
			"logbook_id", logbook.ID, "error", err)
		return content.OverrideDocument{}
	}
	return doc
}

func (cs *contentService) GetLogbookPageSections(ctx context.Context, slug string, pt content.PageType) (content.PageSections, error) {
	if !content.KnownPageType(pt) {
		return nil, apierr.Validation(fmt.Sprintf("Unknown page type %q", pt))
	}
	logbook, _, err := cs.resolveForUser(ctx, slug)
	if err != nil {
		return nil, err
	}

	if cs.cache != nil {
		if sections, ok := cs.cache.GetPageSections(ctx, logbook.ID, pt); ok {
			return sections, nil
		}
	}

	merged := content.MergedSectionsFor(cs.decodeOverrides(logbook), pt)
	if cs.cache != nil {
		cs.cache.SetPageSections(ctx, logbook.ID, pt, merged)
	}
	return merged, nil
}

func (cs *contentService) GetLogbookContent(ctx context.Context, slug string, pt content.PageType) (map[string]content.ContentItem, error) {
	sections, err := cs.GetLogbookPageSections(ctx, slug, pt)
	if err != nil {
		return nil, err
	}
	return content.FlattenItems(pt, sections), nil
}

func (cs *contentService) UpdatePageSection(ctx context.Context, slug string, pt content.PageType, key content.SectionKey, updates content.SectionData) error {
	if len(updates) == 0 {
		return apierr.Validation("No updates provided")
	}
	return cs.mutateOverrides(ctx, slug, pt, func(doc content.OverrideDocument) (content.OverrideDocument, error) {
		merged := content.MergedSectionsFor(doc, pt)
		section, ok := merged[key]
		if !ok {
			section = content.SectionData{}
		}
		for field, value := range updates {
			section[field] = value
		}
		merged[key] = section
		doc[pt] = content.SectionDifferences(merged, pt)
		return doc, nil
	})
}

func (cs *contentService) ToggleSectionVisibility(ctx context.Context, slug string, pt content.PageType, key content.SectionKey, visible bool) error {
	return cs.UpdatePageSection(ctx, slug, pt, key, content.SectionData{"visible": visible})
}

func (cs *contentService) ResetPageSection(ctx context.Context, slug string, pt content.PageType, key content.SectionKey) error {
	return cs.mutateOverrides(ctx, slug, pt, func(doc content.OverrideDocument) (content.OverrideDocument, error) {
		overrides, ok := doc[pt]
		if !ok {
			return doc, nil
		}
		delete(overrides, key)
		if len(overrides) == 0 {
			delete(doc, pt)
		} else {
			doc[pt] = overrides
		}
		return doc, nil
	})
}

func (cs *contentService) UpdateLogbookContent(ctx context.Context, slug string, pt content.PageType, dotPath string, value any) error {
	return cs.BatchUpdateLogbookContent(ctx, slug, pt, map[string]any{dotPath: value})
}

// BatchUpdateLogbookContent applies every dot-path write against the
// merged tree, then re-diffs against the defaults before persisting, so
// both the section-level and dot-path write flows keep the persisted
// document minimal.
func (cs *contentService) BatchUpdateLogbookContent(ctx context.Context, slug string, pt content.PageType, updates map[string]any) error {
	if len(updates) == 0 {
		return apierr.Validation("No updates provided")
	}
	for path := range updates {
		if _, err := content.ParsePath(path); err != nil {
			return apierr.Validation(err.Error())
		}
	}
	return cs.mutateOverrides(ctx, slug, pt, func(doc content.OverrideDocument) (content.OverrideDocument, error) {
		merged := content.MergedSectionsFor(doc, pt)
		working := pageSectionsToMap(merged)
		for path, value := range updates {
			next, err := content.SetValue(working, path, value)
			if err != nil {
				return nil, apierr.Validation(err.Error())
			}
			working = next
		}
		doc[pt] = content.SectionDifferences(mapToPageSections(working), pt)
		return doc, nil
	})
}

func (cs *contentService) SetContentImage(ctx context.Context, slug string, pt content.PageType, dotPath string, image io.Reader, contentType string) (string, error) {
	if cs.bucketService == nil {
		return "", apierr.Internal(errors.New("no upload backend configured"))
	}
	if _, err := content.ParsePath(dotPath); err != nil {
		return "", apierr.Validation(err.Error())
	}
	// Authorization happens before the upload so rejected callers
	// cannot fill the bucket.
	logbook, membership, err := cs.resolveForUser(ctx, slug)
	if err != nil {
		return "", err
	}
	if !membership.Role.CanEditContent() {
		return "", apierr.Forbidden(msgParentsOnly)
	}

	key := fmt.Sprintf("content/%s/%s/%s", logbook.ID, pt, uuid.New())
	if err := cs.bucketService.UploadFile(ctx, gcp.BucketCategoryPhoto, key, image, contentType); err != nil {
		return "", apierr.Internal(fmt.Errorf("upload content image: %w", err))
	}
	url := cs.bucketService.PublicURL(gcp.BucketCategoryPhoto, key)

	if err := cs.UpdateLogbookContent(ctx, slug, pt, dotPath, url); err != nil {
		return "", err
	}
	return url, nil
}

// mutateOverrides is the single write path: authorize, read the current
// override document, apply fn, persist under the optimistic version
// check, and invalidate the page cache. On a version conflict the whole
// read-apply-write cycle is retried against the fresh document, so
// concurrent writers to different paths both land.
func (cs *contentService) mutateOverrides(ctx context.Context, slug string, pt content.PageType, fn func(content.OverrideDocument) (content.OverrideDocument, error)) error {
	if !content.KnownPageType(pt) {
		return apierr.Validation(fmt.Sprintf("Unknown page type %q", pt))
	}

	var lastErr error
	for attempt := 0; attempt < writeRetries; attempt++ {
		logbook, membership, err := cs.resolveForUser(ctx, slug)
		if err != nil {
			return err
		}
		if !membership.Role.CanEditContent() {
			return apierr.Forbidden(msgParentsOnly)
		}

		doc, err := fn(cs.decodeOverrides(logbook))
		if err != nil {
			return err
		}
		if overrides, ok := doc[pt]; ok && len(overrides) == 0 {
			delete(doc, pt)
		}
		raw, err := content.EncodeOverrides(doc)
		if err != nil {
			return apierr.Internal(fmt.Errorf("encode overrides: %w", err))
		}

		err = cs.logbookRepo.UpdatePageSections(ctx, nil, logbook.ID, raw, logbook.ContentVersion)
		if err == nil {
			if cs.cache != nil {
				cs.cache.InvalidatePage(ctx, logbook.ID, pt)
			}
			return nil
		}
		if errors.Is(err, repos.ErrVersionConflict) {
			cs.log.Debug("Content write lost version race, retrying",
				"logbook_id", logbook.ID, "page", pt, "attempt", attempt+1)
			lastErr = err
			continue
		}
		return apierr.Persistence(fmt.Errorf("persist page sections: %w", err))
	}
	return apierr.Conflict(fmt.Sprintf("Content is being edited concurrently, please retry: %v", lastErr))
}

func pageSectionsToMap(sections content.PageSections) map[string]any {
	out := make(map[string]any, len(sections))
	for k, v := range sections {
		out[string(k)] = map[string]any(v)
	}
	return out
}

func mapToPageSections(m map[string]any) content.PageSections {
	out := make(content.PageSections, len(m))
	for k, v := range m {
		if section, ok := v.(map[string]any); ok {
			out[content.SectionKey(k)] = content.SectionData(section)
		}
	}
	return out
}
