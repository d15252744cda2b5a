package models

import "time"

// Creator is the owner reference embedded in a post.
// The owner of a post never changes after creation.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post is a feed entry owned by exactly one user.
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Creator   Creator   `json:"creator"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"` // относительный путь, например images/<uuid>-photo.png
}

// OwnedBy reports whether userID is the owner of the post.
func (p *Post) OwnedBy(userID string) bool {
	return userID != "" && p.Creator.ID == userID
}
