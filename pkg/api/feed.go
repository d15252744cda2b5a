package api

import "time"

// TimeLayout is the ISO-8601 UTC layout of every timestamp on the wire.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Creator is the owner reference of a post.
type Creator struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Post is the wire shape of a feed entry.
type Post struct {
	Creator   Creator `json:"creator"`
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	ImageURL  string  `json:"imageUrl"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// PostRequest is the JSON form of a create or update payload.
// Multipart requests carry the same fields plus an "image" file.
type PostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// PostsResponse представляет страницу ленты
type PostsResponse struct {
	Message    string `json:"message"`
	Posts      []Post `json:"posts"`
	TotalItems int    `json:"totalItems"` // общее число постов, а не размер страницы
}

// PostResponse представляет один пост
type PostResponse struct {
	Post    Post   `json:"post"`
	Message string `json:"message"`
}

// CreatePostResponse представляет ответ на создание поста
type CreatePostResponse struct {
	Post    Post    `json:"post"`
	Creator Creator `json:"creator"`
	Message string  `json:"message"`
}

// ImageUploadResponse представляет ответ PUT /post-image
type ImageUploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath,omitempty"`
}
