package models

import "time"

// Category groups posts under a URL slug. Unpublished categories hide all of their posts.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id" yaml:"-"`
	Title       string    `gorm:"size:256;not null" json:"title" yaml:"title"`
	Description string    `gorm:"type:text;not null" json:"description" yaml:"description"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug" yaml:"slug"`
	IsPublished bool      `gorm:"not null" json:"is_published" yaml:"is_published"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

// Location is an optional place attached to a post.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id" yaml:"-"`
	Name        string    `gorm:"size:256;not null" json:"name" yaml:"name"`
	IsPublished bool      `gorm:"not null" json:"is_published" yaml:"is_published"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}
