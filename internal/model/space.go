package model

import "time"

// Space is a named collection of documents owned by one user. DocumentCount and
// TotalSizeBytes are derived from the documents on every read and never stored.
type Space struct {
	ID             string     `json:"id" bson:"_id"`
	UserID         string     `json:"-" bson:"user_id"`
	Name           string     `json:"name" bson:"name"`
	Description    string     `json:"description" bson:"description"`
	Color          string     `json:"color,omitempty" bson:"color,omitempty"`
	DocumentCount  int64      `json:"document_count" bson:"-"`
	TotalSizeBytes int64      `json:"total_size_bytes" bson:"-"`
	Documents      []Document `json:"documents,omitempty" bson:"-"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// SpaceList is the body of GET /spaces.
type SpaceList struct {
	Spaces      []Space `json:"spaces"`
	TotalSpaces int     `json:"total_spaces"`
}
