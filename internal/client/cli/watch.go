package cli

import (
	"context"

	clientapi "github.com/iudanet/feedhub/internal/client/api"
	"github.com/iudanet/feedhub/pkg/api"
)

// runWatch печатает уведомления о постах до отмены ctx (Ctrl+C)
func (c *Cli) runWatch(ctx context.Context) error {
	c.io.Println("Watching for post changes. Press Ctrl+C to stop.")
	c.io.Println()

	return c.api.Watch(ctx, func(e clientapi.PostEvent) {
		switch e.Action {
		case api.ActionCreate:
			c.io.Printf("[new]     %s %q by %s\n", e.PostID, e.Post.Title, e.Post.Creator.Name)
		case api.ActionUpdate:
			c.io.Printf("[updated] %s %q\n", e.PostID, e.Post.Title)
		case api.ActionDelete:
			c.io.Printf("[deleted] %s\n", e.PostID)
		default:
			c.io.Printf("[%s] %s\n", e.Action, e.PostID)
		}
	})
}
