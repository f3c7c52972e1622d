package repositories

import "photoshare/app/models"

// PostRepository is the Post Record Store: the system of record for posts.
// Iteration order is ascending post id.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	FindAll(req models.PageRequest) (models.Page[*models.Post], error)
	FindAllByIDs(ids []int, req models.PageRequest) (models.Page[*models.Post], error)
	All() ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
	DeleteByPost(postID int) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(tag *models.Tag) error
	GetByID(id int) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	GetByIDs(ids []int) ([]*models.Tag, error)
	List() ([]*models.Tag, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
}

// FolderRepository stores folders. Titles are unique per owner, compared
// case-insensitively.
type FolderRepository interface {
	Create(folder *models.Folder) error
	GetByID(id int) (*models.Folder, error)
	GetByIDs(ids []int) ([]*models.Folder, error)
	List() ([]*models.Folder, error)
	ListByOwner(ownerID int) ([]*models.Folder, error)
	Update(folder *models.Folder) error
	Delete(id int) error
	AddPost(folderID, postID int) error
	RemovePost(folderID, postID int) error
}
