package feed

import (
	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/pkg/api"
)

// ToAPIPost shapes a post for the wire: string ids, ISO-8601 timestamps.
func ToAPIPost(p *models.Post) api.Post {
	return api.Post{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Creator:   api.Creator{ID: p.Creator.ID, Name: p.Creator.Name},
		CreatedAt: api.FormatTime(p.CreatedAt),
		UpdatedAt: api.FormatTime(p.UpdatedAt),
	}
}

// ToAPIPosts shapes a page of posts. The result is never nil.
func ToAPIPosts(posts []*models.Post) []api.Post {
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToAPIPost(p))
	}
	return out
}
