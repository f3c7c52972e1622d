// Package search holds the full-text Search Document Store and the mapping
// from post records onto search documents.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"photoshare/app/metrics"
	"photoshare/app/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when no document exists for a post.
var ErrDocumentNotFound = errors.New("search document not found")

// DocumentStore is the Search Document Store. Writes are upserts keyed by
// post id, so at most one document exists per post.
type DocumentStore interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, doc *models.SearchDocument) error
	SaveAll(ctx context.Context, docs []*models.SearchDocument) error
	DeleteByPostID(ctx context.Context, postID int) error
	FindByPostID(ctx context.Context, postID int) (*models.SearchDocument, error)
	FindByTitleOrDescriptionContaining(ctx context.Context, keyword string, req models.PageRequest) (models.Page[*models.SearchDocument], error)
	FindPostsByTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error)
	FindPostsExcludingTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error)
	FindPostsWithoutTags(ctx context.Context, req models.PageRequest) (models.Page[*models.SearchDocument], error)
	Close() error
}

// Index field names.
const (
	FieldDocumentID  = "documentId"
	FieldPostID      = "postId"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldTagged      = "tagged"

	textAnalyzer = "photoshare_text"
)

// DefaultMinShouldMatch is the share of keyword terms, in percent, that one
// field has to contain for a keyword search to match.
const DefaultMinShouldMatch = 75

// NewIndexMapping describes how search documents are indexed. Title and
// description are tokenised and lowercased, tags are exact keywords and
// tagged records whether the tags field is present at all.
func NewIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}

	text := bleve.NewTextFieldMapping()
	text.Analyzer = textAnalyzer

	keyword := bleve.NewKeywordFieldMapping()

	numeric := bleve.NewNumericFieldMapping()

	flag := bleve.NewBooleanFieldMapping()
	flag.Store = false

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false
	doc.AddFieldMappingsAt(FieldTitle, text)
	doc.AddFieldMappingsAt(FieldDescription, text)
	doc.AddFieldMappingsAt(FieldTags, keyword)
	doc.AddFieldMappingsAt(FieldDocumentID, keyword)
	doc.AddFieldMappingsAt(FieldPostID, numeric)
	doc.AddFieldMappingsAt(FieldTagged, flag)

	im.DefaultMapping = doc
	im.DefaultAnalyzer = textAnalyzer
	return im, nil
}

// BleveDocumentStore implements DocumentStore on a bleve index.
type BleveDocumentStore struct {
	index          bleve.Index
	minShouldMatch int
}

// Option configures a BleveDocumentStore.
type Option func(*BleveDocumentStore)

// WithMinShouldMatch sets the keyword match threshold in percent.
func WithMinShouldMatch(percent int) Option {
	return func(s *BleveDocumentStore) {
		if percent > 0 && percent <= 100 {
			s.minShouldMatch = percent
		}
	}
}

// Open opens the index at path, creating it if it does not exist.
func Open(path string, opts ...Option) (*BleveDocumentStore, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		var im *mapping.IndexMappingImpl
		im, err = NewIndexMapping()
		if err != nil {
			return nil, err
		}
		idx, err = bleve.New(path, im)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index at %q: %w", path, err)
	}
	return newStore(idx, opts), nil
}

// NewMemOnly creates an index that lives only in memory.
func NewMemOnly(opts ...Option) (*BleveDocumentStore, error) {
	im, err := NewIndexMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory search index: %w", err)
	}
	return newStore(idx, opts), nil
}

func newStore(idx bleve.Index, opts []Option) *BleveDocumentStore {
	s := &BleveDocumentStore{index: idx, minShouldMatch: DefaultMinShouldMatch}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BleveDocumentStore) Close() error {
	return s.index.Close()
}

// docID is the bleve identity of the document for a post.
func docID(postID int) string {
	return fmt.Sprintf("%010d", postID)
}

func indexFields(doc *models.SearchDocument) map[string]interface{} {
	fields := map[string]interface{}{
		FieldDocumentID:  doc.DocumentID,
		FieldPostID:      float64(doc.PostID),
		FieldTitle:       doc.Title,
		FieldDescription: doc.Description,
		FieldTagged:      len(doc.Tags) > 0,
	}
	// An empty list is left out entirely so it is indistinguishable from none.
	if len(doc.Tags) > 0 {
		fields[FieldTags] = doc.Tags
	}
	return fields
}

// Count returns the number of documents in the index.
func (s *BleveDocumentStore) Count(ctx context.Context) (int, error) {
	n, err := s.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(n), nil
}

// Save upserts doc. An existing document keeps its document id.
func (s *BleveDocumentStore) Save(ctx context.Context, doc *models.SearchDocument) error {
	if doc == nil {
		return errors.New("search document cannot be nil")
	}
	if err := s.assignDocumentIDs(ctx, []*models.SearchDocument{doc}); err != nil {
		return err
	}
	err := s.index.Index(docID(doc.PostID), indexFields(doc))
	metrics.RecordIndexWrite("save", err)
	if err != nil {
		return fmt.Errorf("failed to index post %d: %w", doc.PostID, err)
	}
	return nil
}

// SaveAll upserts docs in one batch.
func (s *BleveDocumentStore) SaveAll(ctx context.Context, docs []*models.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.assignDocumentIDs(ctx, docs); err != nil {
		return err
	}
	batch := s.index.NewBatch()
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if err := batch.Index(docID(doc.PostID), indexFields(doc)); err != nil {
			return fmt.Errorf("failed to batch post %d: %w", doc.PostID, err)
		}
	}
	err := s.index.Batch(batch)
	metrics.RecordIndexWrite("save_all", err)
	if err != nil {
		return fmt.Errorf("failed to index batch of %d documents: %w", len(docs), err)
	}
	return nil
}

// assignDocumentIDs reuses the id of an already indexed document for the
// same post, otherwise mints a new one.
func (s *BleveDocumentStore) assignDocumentIDs(ctx context.Context, docs []*models.SearchDocument) error {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc != nil && doc.DocumentID == "" {
			ids = append(ids, docID(doc.PostID))
		}
	}
	if len(ids) == 0 {
		return nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery(ids), len(ids), 0, false)
	req.Fields = []string{FieldDocumentID, FieldPostID}
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to look up existing documents: %w", err)
	}
	existing := make(map[string]string, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := hit.Fields[FieldDocumentID].(string); ok && id != "" {
			existing[hit.ID] = id
		}
	}

	for _, doc := range docs {
		if doc == nil || doc.DocumentID != "" {
			continue
		}
		if id, ok := existing[docID(doc.PostID)]; ok {
			doc.DocumentID = id
		} else {
			doc.DocumentID = uuid.NewString()
		}
	}
	return nil
}

// DeleteByPostID removes the document for postID. Deleting a missing
// document is not an error.
func (s *BleveDocumentStore) DeleteByPostID(ctx context.Context, postID int) error {
	err := s.index.Delete(docID(postID))
	metrics.RecordIndexWrite("delete", err)
	if err != nil {
		return fmt.Errorf("failed to delete document for post %d: %w", postID, err)
	}
	return nil
}

// FindByPostID returns the document for postID or ErrDocumentNotFound.
func (s *BleveDocumentStore) FindByPostID(ctx context.Context, postID int) (*models.SearchDocument, error) {
	q := bleve.NewDocIDQuery([]string{docID(postID)})
	page, err := s.search(ctx, "post_id", q, models.NewPageRequest(0, 1))
	if err != nil {
		return nil, err
	}
	if page.IsEmpty() {
		return nil, ErrDocumentNotFound
	}
	return page.Content[0], nil
}

// FindByTitleOrDescriptionContaining matches documents where either the
// title or the description contains enough of the keyword's terms.
func (s *BleveDocumentStore) FindByTitleOrDescriptionContaining(ctx context.Context, keyword string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	terms := s.analyze(keyword)
	if len(terms) == 0 {
		return models.EmptyPage[*models.SearchDocument](req), nil
	}
	need := minimumShouldMatch(len(terms), s.minShouldMatch)

	q := bleve.NewDisjunctionQuery(
		fieldTermsQuery(FieldTitle, terms, need),
		fieldTermsQuery(FieldDescription, terms, need),
	)
	return s.search(ctx, "keyword", q, req)
}

// FindPostsByTags matches documents carrying any of tags.
func (s *BleveDocumentStore) FindPostsByTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	if len(tags) == 0 {
		return models.EmptyPage[*models.SearchDocument](req), nil
	}
	return s.search(ctx, "with_tags", tagsQuery(tags), req)
}

// FindPostsExcludingTags matches documents carrying none of tags, untagged
// documents included.
func (s *BleveDocumentStore) FindPostsExcludingTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	q := bleve.NewBooleanQuery()
	q.AddMust(bleve.NewMatchAllQuery())
	if len(tags) > 0 {
		q.AddMustNot(tagsQuery(tags))
	}
	return s.search(ctx, "excluding_tags", q, req)
}

// FindPostsWithoutTags matches documents that have no tags field.
func (s *BleveDocumentStore) FindPostsWithoutTags(ctx context.Context, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	q := bleve.NewBoolFieldQuery(false)
	q.SetField(FieldTagged)
	return s.search(ctx, "without_tags", q, req)
}

func (s *BleveDocumentStore) search(ctx context.Context, name string, q query.Query, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	start := time.Now()

	sr := bleve.NewSearchRequestOptions(q, req.Size, req.Offset(), false)
	sr.Fields = []string{"*"}
	sr.SortBy([]string{"-_score", "_id"})

	res, err := s.index.SearchInContext(ctx, sr)
	metrics.RecordSearchQuery(name, time.Since(start), err)
	if err != nil {
		return models.Page[*models.SearchDocument]{}, fmt.Errorf("search %s failed: %w", name, err)
	}

	docs := make([]*models.SearchDocument, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, err := decodeHit(hit.ID, hit.Fields)
		if err != nil {
			return models.Page[*models.SearchDocument]{}, err
		}
		docs = append(docs, doc)
	}
	return models.NewPage(docs, req, int(res.Total)), nil
}

func (s *BleveDocumentStore) analyze(keyword string) []string {
	analyzer := s.index.Mapping().AnalyzerNamed(textAnalyzer)
	if analyzer == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var terms []string
	for _, token := range analyzer.Analyze([]byte(keyword)) {
		term := string(token.Term)
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// minimumShouldMatch rounds percent of n down, but never below one term.
func minimumShouldMatch(n, percent int) int {
	need := int(math.Floor(float64(n) * float64(percent) / 100))
	if need < 1 {
		need = 1
	}
	if need > n {
		need = n
	}
	return need
}

func fieldTermsQuery(field string, terms []string, need int) query.Query {
	clauses := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		tq := bleve.NewTermQuery(term)
		tq.SetField(field)
		clauses = append(clauses, tq)
	}
	dq := bleve.NewDisjunctionQuery(clauses...)
	dq.SetMin(float64(need))
	return dq
}

func tagsQuery(tags []string) query.Query {
	clauses := make([]query.Query, 0, len(tags))
	for _, tag := range tags {
		tq := bleve.NewTermQuery(tag)
		tq.SetField(FieldTags)
		clauses = append(clauses, tq)
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

func decodeHit(id string, fields map[string]interface{}) (*models.SearchDocument, error) {
	doc := &models.SearchDocument{Tags: []string{}}

	switch v := fields[FieldPostID].(type) {
	case float64:
		doc.PostID = int(v)
	default:
		postID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("document %q has no post id", id)
		}
		doc.PostID = postID
	}

	doc.DocumentID, _ = fields[FieldDocumentID].(string)
	doc.Title, _ = fields[FieldTitle].(string)
	doc.Description, _ = fields[FieldDescription].(string)

	// A single stored value comes back as a scalar, several as a slice.
	switch v := fields[FieldTags].(type) {
	case string:
		doc.Tags = append(doc.Tags, v)
	case []interface{}:
		for _, tag := range v {
			if s, ok := tag.(string); ok {
				doc.Tags = append(doc.Tags, s)
			}
		}
	}
	return doc, nil
}

var _ DocumentStore = (*BleveDocumentStore)(nil)
