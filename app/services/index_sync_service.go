package services

import (
	"context"
	"fmt"
	"sync"

	"photoshare/app/logging"
	"photoshare/app/metrics"
	"photoshare/app/repositories"
	"photoshare/app/search"
)

// IndexSyncService bootstraps the search index from the record store.
type IndexSyncService struct {
	posts repositories.PostRepository
	docs  search.DocumentStore
	mu    sync.Mutex
}

func NewIndexSyncService(posts repositories.PostRepository, docs search.DocumentStore) *IndexSyncService {
	return &IndexSyncService{posts: posts, docs: docs}
}

// SyncPosts indexes every post if and only if the index is empty, and
// returns how many documents it wrote. Once the index holds anything it is
// a no-op; later drift is repaired by the per-mutation writes, not here.
// Writes are upserts, so two processes racing through the empty check only
// write the same documents twice.
func (s *IndexSyncService) SyncPosts(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.docs.Count(ctx)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to count search documents: %w", err)
	}
	if count > 0 {
		metrics.SyncRuns.WithLabelValues("skipped").Inc()
		logging.Ctx(ctx).Debug().Int("documents", count).Msg("search index already populated, skipping sync")
		return 0, nil
	}

	posts, err := s.posts.All()
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to read posts: %w", err)
	}

	docs := search.ToSearchDocuments(posts)
	if err := s.docs.SaveAll(ctx, docs); err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to index posts: %w", err)
	}

	metrics.SyncRuns.WithLabelValues("populated").Inc()
	metrics.SyncDocuments.Add(float64(len(docs)))
	logging.Ctx(ctx).Info().Int("documents", len(docs)).Msg("search index populated")
	return len(docs), nil
}
