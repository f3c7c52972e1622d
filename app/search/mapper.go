package search

import "photoshare/app/models"

// ToSearchDocument projects a post onto its search document.
// The document id is left for the store to assign.
func ToSearchDocument(post *models.Post) *models.SearchDocument {
	if post == nil {
		return nil
	}
	return &models.SearchDocument{
		PostID:      post.ID,
		Title:       post.Title,
		Description: post.Description,
		Tags:        post.TagNames(),
	}
}

// ToSearchDocuments maps a batch of posts, skipping nils.
func ToSearchDocuments(posts []*models.Post) []*models.SearchDocument {
	docs := make([]*models.SearchDocument, 0, len(posts))
	for _, post := range posts {
		if doc := ToSearchDocument(post); doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}
