package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"photoshare/app/models"
	"photoshare/app/search"
)

// DocumentStore is an in-memory search.DocumentStore. Keyword matching is a
// plain lowercase word match; every query returns documents in post id order.
type DocumentStore struct {
	docs  map[int]*models.SearchDocument
	calls map[string]int
	mutex sync.RWMutex

	// Err, when set, is returned by every read and write.
	Err error
	// Errs fails only the named method, e.g. "DeleteByPostID".
	Errs map[string]error
	// Results overrides the result of a named query: "with_tags",
	// "excluding_tags", "without_tags" or "keyword".
	Results map[string][]*models.SearchDocument
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:    make(map[int]*models.SearchDocument),
		calls:   make(map[string]int),
		Errs:    make(map[string]error),
		Results: make(map[string][]*models.SearchDocument),
	}
}

// Calls reports how many times the named method ran.
func (m *DocumentStore) Calls(name string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[name]
}

func (m *DocumentStore) record(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls[name]++
	if err, ok := m.Errs[name]; ok {
		return err
	}
	return m.Err
}

func (m *DocumentStore) Count(ctx context.Context) (int, error) {
	if err := m.record("Count"); err != nil {
		return 0, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.docs), nil
}

func (m *DocumentStore) Save(ctx context.Context, doc *models.SearchDocument) error {
	if err := m.record("Save"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.put(doc)
	return nil
}

func (m *DocumentStore) SaveAll(ctx context.Context, docs []*models.SearchDocument) error {
	if err := m.record("SaveAll"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, doc := range docs {
		if doc != nil {
			m.put(doc)
		}
	}
	return nil
}

func (m *DocumentStore) put(doc *models.SearchDocument) {
	if existing, ok := m.docs[doc.PostID]; ok && doc.DocumentID == "" {
		doc.DocumentID = existing.DocumentID
	}
	if doc.DocumentID == "" {
		doc.DocumentID = "doc-" + strconv.Itoa(doc.PostID)
	}
	cp := *doc
	m.docs[doc.PostID] = &cp
}

func (m *DocumentStore) DeleteByPostID(ctx context.Context, postID int) error {
	if err := m.record("DeleteByPostID"); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.docs, postID)
	return nil
}

func (m *DocumentStore) FindByPostID(ctx context.Context, postID int) (*models.SearchDocument, error) {
	if err := m.record("FindByPostID"); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	doc, ok := m.docs[postID]
	if !ok {
		return nil, search.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *DocumentStore) FindByTitleOrDescriptionContaining(ctx context.Context, keyword string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	words := strings.Fields(strings.ToLower(keyword))
	return m.query("keyword", req, func(doc *models.SearchDocument) bool {
		if len(words) == 0 {
			return false
		}
		return containsAll(doc.Title, words) || containsAll(doc.Description, words)
	})
}

func (m *DocumentStore) FindPostsByTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	return m.query("with_tags", req, func(doc *models.SearchDocument) bool {
		return intersects(doc.Tags, tags)
	})
}

func (m *DocumentStore) FindPostsExcludingTags(ctx context.Context, tags []string, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	return m.query("excluding_tags", req, func(doc *models.SearchDocument) bool {
		return !intersects(doc.Tags, tags)
	})
}

func (m *DocumentStore) FindPostsWithoutTags(ctx context.Context, req models.PageRequest) (models.Page[*models.SearchDocument], error) {
	return m.query("without_tags", req, func(doc *models.SearchDocument) bool {
		return len(doc.Tags) == 0
	})
}

func (m *DocumentStore) Close() error {
	return nil
}

func (m *DocumentStore) query(name string, req models.PageRequest, keep func(*models.SearchDocument) bool) (models.Page[*models.SearchDocument], error) {
	if err := m.record(name); err != nil {
		return models.Page[*models.SearchDocument]{}, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if fixed, ok := m.Results[name]; ok {
		return models.Paginate(fixed, req), nil
	}

	ids := make([]int, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var matched []*models.SearchDocument
	for _, id := range ids {
		if doc := m.docs[id]; keep(doc) {
			cp := *doc
			matched = append(matched, &cp)
		}
	}
	return models.Paginate(matched, req), nil
}

func containsAll(text string, words []string) bool {
	fields := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		found := false
		for _, f := range fields {
			if f == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

var _ search.DocumentStore = (*DocumentStore)(nil)
