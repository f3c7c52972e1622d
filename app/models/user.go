package models

import "time"

// Validate checks the tag name constraints.
func (t *Tag) Validate() error {
	return validate.Struct(t)
}

// Validate checks the user's identity fields.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate stamps the creation time.
func (u *User) BeforeCreate() {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
}

// PreferredTagNames returns the names of the user's preferred tags in order.
func (u *User) PreferredTagNames() []string {
	return TagNames(u.PreferredTags)
}

// HasPreferences reports whether the user has any preferred tag.
func (u *User) HasPreferences() bool {
	return u != nil && len(u.PreferredTagNames()) > 0
}
