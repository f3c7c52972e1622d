package services

import (
	"context"
	"strings"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/search"
)

// SearchService answers keyword searches: the index picks the matching
// posts and the record store supplies them.
type SearchService struct {
	docs  search.DocumentStore
	posts PostReader
}

func NewSearchService(docs search.DocumentStore, posts PostReader) *SearchService {
	return &SearchService{docs: docs, posts: posts}
}

// Search returns posts whose title or description match keyword.
//
// The ids of the requested index page are hydrated with the same page
// request, so records come back in store order rather than match order.
func (s *SearchService) Search(ctx context.Context, keyword string, req models.PageRequest) (models.Page[*models.Post], error) {
	keyword = strings.TrimSpace(keyword)

	docs, err := s.docs.FindByTitleOrDescriptionContaining(ctx, keyword, req)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	if docs.IsEmpty() {
		logging.Ctx(ctx).Debug().Str("keyword", keyword).Msg("search matched nothing")
		return models.EmptyPage[*models.Post](req), nil
	}

	ids := make([]int, 0, len(docs.Content))
	for _, doc := range docs.Content {
		ids = append(ids, doc.PostID)
	}

	logging.Ctx(ctx).Debug().Str("keyword", keyword).Ints("post_ids", ids).Msg("search matched")
	return s.posts.ReadAllByIDs(ids, req)
}
