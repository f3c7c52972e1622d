package services

import (
	"context"
	"fmt"
	"strconv"

	"photoshare/app/clients"
	"photoshare/app/logging"
	"photoshare/app/metrics"
	"photoshare/app/models"
	"photoshare/app/search"

	"golang.org/x/sync/errgroup"
)

// RecommendationService builds the personalised feed.
//
// A user without preferred tags gets the guest feed. Otherwise the preferred
// tags are expanded through the association collaborator and the index is
// asked three things over the same page window: posts with any of the tags,
// posts with none of them, and posts with no tags at all. The results are
// merged in that order, deduplicated, and hydrated from the record store.
// An empty merge falls back to the guest feed; a collaborator failure does
// not, it surfaces as ErrServiceUnavailable.
type RecommendationService struct {
	posts        PostReader
	docs         search.DocumentStore
	associations clients.TagAssociationClient
}

func NewRecommendationService(posts PostReader, docs search.DocumentStore, associations clients.TagAssociationClient) *RecommendationService {
	return &RecommendationService{posts: posts, docs: docs, associations: associations}
}

// RecommendedPosts returns the feed page for user. A nil user is a guest.
func (s *RecommendationService) RecommendedPosts(ctx context.Context, user *models.User, req models.PageRequest) (models.Page[*models.Post], error) {
	if !user.HasPreferences() {
		metrics.RecordRecommendation(metrics.OutcomeGuestFallback)
		return s.GuestPosts(ctx, req)
	}

	preferred := user.PreferredTagNames()
	associated, err := s.associations.GetAssociations(ctx, preferred)
	if err != nil {
		metrics.RecordRecommendation(metrics.OutcomeUnavailable)
		logging.Ctx(ctx).Warn().Err(err).Int("user_id", user.ID).Msg("tag association lookup failed")
		return models.Page[*models.Post]{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	combined := distinct(preferred, associated)

	merged, err := s.queryIndex(ctx, combined, req)
	if err != nil {
		metrics.RecordRecommendation(metrics.OutcomeError)
		return models.Page[*models.Post]{}, err
	}

	if len(merged) == 0 {
		metrics.RecordRecommendation(metrics.OutcomeGuestFallback)
		logging.Ctx(ctx).Debug().Int("user_id", user.ID).Msg("no indexed posts for recommendation, serving guest feed")
		return s.GuestPosts(ctx, req)
	}

	ids := make([]int, 0, len(merged))
	for _, doc := range merged {
		ids = append(ids, doc.PostID)
	}

	page, err := s.posts.ReadAllByIDs(ids, req)
	if err != nil {
		metrics.RecordRecommendation(metrics.OutcomeError)
		return models.Page[*models.Post]{}, err
	}
	metrics.RecordRecommendation(metrics.OutcomePersonalized)
	logging.Ctx(ctx).Debug().
		Int("user_id", user.ID).
		Strs("tags", combined).
		Int("candidates", len(ids)).
		Msg("recommendations served")
	return page, nil
}

// GuestPosts returns the unfiltered feed straight from the record store.
func (s *RecommendationService) GuestPosts(ctx context.Context, req models.PageRequest) (models.Page[*models.Post], error) {
	return s.posts.ListPosts(req)
}

// queryIndex runs the three feed queries concurrently and merges them.
func (s *RecommendationService) queryIndex(ctx context.Context, tags []string, req models.PageRequest) ([]*models.SearchDocument, error) {
	var withTags, excludingTags, withoutTags models.Page[*models.SearchDocument]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		withTags, err = s.docs.FindPostsByTags(gctx, tags, req)
		return err
	})
	g.Go(func() (err error) {
		excludingTags, err = s.docs.FindPostsExcludingTags(gctx, tags, req)
		return err
	})
	g.Go(func() (err error) {
		withoutTags, err = s.docs.FindPostsWithoutTags(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recommendation query failed: %w", err)
	}

	return mergeDocuments(withTags.Content, excludingTags.Content, withoutTags.Content), nil
}

// mergeDocuments concatenates the lists and keeps the first occurrence of
// each document.
func mergeDocuments(lists ...[]*models.SearchDocument) []*models.SearchDocument {
	seen := make(map[string]bool)
	var merged []*models.SearchDocument
	for _, list := range lists {
		for _, doc := range list {
			if doc == nil {
				continue
			}
			key := documentKey(doc)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, doc)
		}
	}
	return merged
}

func documentKey(doc *models.SearchDocument) string {
	if doc.DocumentID != "" {
		return doc.DocumentID
	}
	return "post:" + strconv.Itoa(doc.PostID)
}

// distinct concatenates the lists, dropping repeats and keeping first order.
func distinct(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
