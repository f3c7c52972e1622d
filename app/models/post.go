package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}

// TagNames returns the names of the post's tags in order.
func (p *Post) TagNames() []string {
	return TagNames(p.Tags)
}

// SetTags replaces the post's tags, dropping nils and repeated tag ids.
func (p *Post) SetTags(tags []*Tag) {
	seen := make(map[int]struct{}, len(tags))
	p.Tags = make([]*Tag, 0, len(tags))
	for _, tag := range tags {
		if tag == nil {
			continue
		}
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		p.Tags = append(p.Tags, tag)
	}
}

// SetFolders replaces the post's folder memberships, dropping repeats.
func (p *Post) SetFolders(ids []int) {
	p.FolderIDs = uniqueIDs(ids)
}

// AddFolder records membership in folder id. It reports whether the post
// was not already in it.
func (p *Post) AddFolder(id int) bool {
	for _, existing := range p.FolderIDs {
		if existing == id {
			return false
		}
	}
	p.FolderIDs = append(p.FolderIDs, id)
	return true
}

// RemoveFolder drops membership in folder id and reports whether it was there.
func (p *Post) RemoveFolder(id int) bool {
	for i, existing := range p.FolderIDs {
		if existing == id {
			p.FolderIDs = append(p.FolderIDs[:i:i], p.FolderIDs[i+1:]...)
			return true
		}
	}
	return false
}

// TagNames flattens tags to their names, skipping nils. Never returns nil.
func TagNames(tags []*Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != nil {
			names = append(names, tag.Name)
		}
	}
	return names
}

// uniqueIDs keeps the first occurrence of every id. Never returns nil.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
