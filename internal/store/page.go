package store

import "time"

// Page is a stored page. Payload is always the JSON encoding of the
// document regardless of how the content is stored.
type Page struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Payload   []byte    `json:"-"`
	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary describes a page without its content.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// pageRecord is the row of the pages table.
type pageRecord struct {
	// id uuid
	ID string `gorm:"primaryKey;size:36"`
	// title text
	Title string `gorm:"not null;index"`
	// content blob, json or cbor
	Content  []byte `gorm:"not null"`
	Encoding string `gorm:"size:8;not null"`
	Version  uint64 `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (pageRecord) TableName() string { return "pages" }

func (r *pageRecord) summary() Summary {
	return Summary{ID: r.ID, Title: r.Title, Version: r.Version, UpdatedAt: r.UpdatedAt}
}
