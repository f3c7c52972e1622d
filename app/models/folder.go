package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks the folder's title, description and owner.
func (f *Folder) Validate() error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("folder title must not be blank")
	}
	return nil
}

// BeforeCreate stamps the creation time and normalises the member list.
func (f *Folder) BeforeCreate() {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	f.SetPosts(f.PostIDs)
}

// SetPosts replaces the folder's members, dropping repeats.
func (f *Folder) SetPosts(ids []int) {
	f.PostIDs = uniqueIDs(ids)
}

// HasPost reports whether post id is a member.
func (f *Folder) HasPost(id int) bool {
	for _, existing := range f.PostIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// AddPost adds post id and reports whether it was not already a member.
func (f *Folder) AddPost(id int) bool {
	if f.HasPost(id) {
		return false
	}
	f.PostIDs = append(f.PostIDs, id)
	return true
}

// RemovePost drops post id and reports whether it was a member.
func (f *Folder) RemovePost(id int) bool {
	for i, existing := range f.PostIDs {
		if existing == id {
			f.PostIDs = append(f.PostIDs[:i:i], f.PostIDs[i+1:]...)
			return true
		}
	}
	return false
}

// IDDiff returns the ids in next that are not in prev, and the ids in prev
// that are not in next, each in their original order.
func IDDiff(prev, next []int) (added, removed []int) {
	inPrev := make(map[int]bool, len(prev))
	for _, id := range prev {
		inPrev[id] = true
	}
	inNext := make(map[int]bool, len(next))
	for _, id := range next {
		inNext[id] = true
		if !inPrev[id] {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if !inNext[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}
