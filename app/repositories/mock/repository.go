package mock

import (
	"sort"
	"strings"
	"sync"
	"time"

	"photoshare/app/models"
	"photoshare/app/repositories"
)

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex

	// FindAllByIDsCalls counts hydration requests.
	FindAllByIDsCalls int
	// Err, when set, is returned by every read.
	Err error
	// UpdateErr and DeleteErr, when set, fail the matching write.
	UpdateErr error
	DeleteErr error
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

type TagRepository struct {
	tags   map[int]*models.Tag
	nextID int
	mutex  sync.RWMutex
}

type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
	m.FindAllByIDsCalls = 0
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

func NewTagRepository() *TagRepository {
	return &TagRepository{
		tags:   make(map[int]*models.Tag),
		nextID: 1,
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = post
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// sorted returns posts in id order; callers hold the lock.
func (m *PostRepository) sorted(keep func(*models.Post) bool) []*models.Post {
	var posts []*models.Post
	for id := 1; id <= m.nextID-1; id++ {
		if post, exists := m.posts[id]; exists && keep(post) {
			posts = append(posts, post)
		}
	}
	return posts
}

func (m *PostRepository) FindAll(req models.PageRequest) (models.Page[*models.Post], error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return models.Page[*models.Post]{}, m.Err
	}
	all := m.sorted(func(*models.Post) bool { return true })
	return models.Paginate(all, req), nil
}

func (m *PostRepository) FindAllByIDs(ids []int, req models.PageRequest) (models.Page[*models.Post], error) {
	m.mutex.Lock()
	m.FindAllByIDsCalls++
	m.mutex.Unlock()

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return models.Page[*models.Post]{}, m.Err
	}
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	matched := m.sorted(func(p *models.Post) bool { return wanted[p.ID] })
	return models.Paginate(matched, req), nil
}

func (m *PostRepository) All() ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(*models.Post) bool { return true }), nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return comment, nil
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) DeleteByPost(postID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, comment := range m.comments {
		if comment.PostID == postID {
			delete(m.comments, id)
		}
	}
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var comments []*models.Comment
	for _, comment := range m.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// TagRepository implementation
func (m *TagRepository) Create(tag *models.Tag) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.tags {
		if strings.EqualFold(strings.TrimSpace(existing.Name), strings.TrimSpace(tag.Name)) {
			return repositories.ErrAlreadyExists
		}
	}
	tag.ID = m.nextID
	m.nextID++
	m.tags[tag.ID] = tag
	return nil
}

func (m *TagRepository) GetByID(id int) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tag, exists := m.tags[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return tag, nil
}

func (m *TagRepository) GetByName(name string) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, tag := range m.tags {
		if strings.EqualFold(strings.TrimSpace(tag.Name), strings.TrimSpace(name)) {
			return tag, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *TagRepository) GetByIDs(ids []int) ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	tags := []*models.Tag{}
	for id := 1; id < m.nextID; id++ {
		if tag, exists := m.tags[id]; exists && wanted[id] {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (m *TagRepository) List() ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var tags []*models.Tag
	for id := 1; id < m.nextID; id++ {
		if tag, exists := m.tags[id]; exists {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return repositories.ErrAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.BeforeCreate()
	m.users[user.ID] = user
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.users[user.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	user.Username = existing.Username
	if user.PasswordHash == "" {
		user.PasswordHash = existing.PasswordHash
	}
	m.users[user.ID] = user
	return nil
}

// FolderRepository implementation
type FolderRepository struct {
	folders map[int]*models.Folder
	nextID  int
	mutex   sync.RWMutex
}

func NewFolderRepository() *FolderRepository {
	return &FolderRepository{
		folders: make(map[int]*models.Folder),
		nextID:  1,
	}
}

func (m *FolderRepository) titleTaken(ownerID int, title string, except int) bool {
	for _, existing := range m.folders {
		if existing.ID != except && existing.OwnerID == ownerID &&
			strings.EqualFold(strings.TrimSpace(existing.Title), strings.TrimSpace(title)) {
			return true
		}
	}
	return false
}

func (m *FolderRepository) Create(folder *models.Folder) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.titleTaken(folder.OwnerID, folder.Title, 0) {
		return repositories.ErrAlreadyExists
	}
	folder.ID = m.nextID
	m.nextID++
	folder.BeforeCreate()
	cp := *folder
	m.folders[folder.ID] = &cp
	return nil
}

func (m *FolderRepository) GetByID(id int) (*models.Folder, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	folder, exists := m.folders[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *folder
	cp.PostIDs = append([]int{}, folder.PostIDs...)
	return &cp, nil
}

func (m *FolderRepository) GetByIDs(ids []int) ([]*models.Folder, error) {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return m.sorted(func(f *models.Folder) bool { return wanted[f.ID] }), nil
}

func (m *FolderRepository) List() ([]*models.Folder, error) {
	return m.sorted(func(*models.Folder) bool { return true }), nil
}

func (m *FolderRepository) ListByOwner(ownerID int) ([]*models.Folder, error) {
	return m.sorted(func(f *models.Folder) bool { return f.OwnerID == ownerID }), nil
}

func (m *FolderRepository) sorted(keep func(*models.Folder) bool) []*models.Folder {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	folders := []*models.Folder{}
	for id := 1; id < m.nextID; id++ {
		if folder, exists := m.folders[id]; exists && keep(folder) {
			cp := *folder
			cp.PostIDs = append([]int{}, folder.PostIDs...)
			folders = append(folders, &cp)
		}
	}
	return folders
}

func (m *FolderRepository) Update(folder *models.Folder) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.folders[folder.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	folder.OwnerID = existing.OwnerID
	folder.CreatedAt = existing.CreatedAt
	if m.titleTaken(folder.OwnerID, folder.Title, folder.ID) {
		return repositories.ErrAlreadyExists
	}
	folder.SetPosts(folder.PostIDs)
	cp := *folder
	m.folders[folder.ID] = &cp
	return nil
}

func (m *FolderRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.folders[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.folders, id)
	return nil
}

func (m *FolderRepository) AddPost(folderID, postID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	folder, exists := m.folders[folderID]
	if !exists {
		return repositories.ErrNotFound
	}
	folder.AddPost(postID)
	return nil
}

func (m *FolderRepository) RemovePost(folderID, postID int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	folder, exists := m.folders[folderID]
	if !exists {
		return repositories.ErrNotFound
	}
	folder.RemovePost(postID)
	return nil
}

var (
	_ repositories.FolderRepository  = (*FolderRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.TagRepository     = (*TagRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
)
