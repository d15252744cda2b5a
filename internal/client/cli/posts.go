package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	clientapi "github.com/iudanet/feedhub/internal/client/api"
	"github.com/iudanet/feedhub/pkg/api"
)

func (c *Cli) runPosts(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page %q. Usage: feedhub posts [page]", args[0])
		}
		page = n
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	resp, err := c.api.ListPosts(ctx, token, page)
	if err != nil {
		return serverError(err)
	}

	c.io.Printf("=== Feed, page %d ===\n", page)
	c.io.Println()

	if len(resp.Posts) == 0 {
		c.io.Println("No posts found.")
		if resp.TotalItems == 0 {
			c.io.Println()
			c.io.Println("Use 'feedhub create' to write the first post.")
		}
		return nil
	}

	for i, post := range resp.Posts {
		c.io.Printf("%d. %s\n", i+1, post.Title)
		c.io.Printf("   ID:     %s\n", post.ID)
		c.io.Printf("   Author: %s\n", post.Creator.Name)
		c.io.Printf("   Date:   %s\n", post.CreatedAt)
		c.io.Println()
	}
	c.io.Printf("Showing %d of %d post(s).\n", len(resp.Posts), resp.TotalItems)

	return nil
}

func (c *Cli) runPost(ctx context.Context, args []string) error {
	postID, err := requireArg(args, "post <id>")
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	post, err := c.api.GetPost(ctx, token, postID)
	if err != nil {
		return serverError(err)
	}

	c.printPost(post)
	return nil
}

func (c *Cli) printPost(post *api.Post) {
	c.io.Printf("=== %s ===\n", post.Title)
	c.io.Println()
	c.io.Printf("ID:      %s\n", post.ID)
	c.io.Printf("Author:  %s\n", post.Creator.Name)
	c.io.Printf("Created: %s\n", post.CreatedAt)
	if post.UpdatedAt != post.CreatedAt {
		c.io.Printf("Updated: %s\n", post.UpdatedAt)
	}
	c.io.Printf("Image:   %s\n", post.ImageURL)
	c.io.Println()
	c.io.Println(post.Content)
}

func (c *Cli) runCreate(ctx context.Context) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== New Post ===")
	c.io.Println()

	var draft clientapi.PostDraft
	if draft.Title, err = c.io.ReadInput("Title: "); err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}
	if draft.Content, err = c.io.ReadInput("Content: "); err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if draft.ImagePath, err = c.io.ReadInput("Image file (png, jpg, jpeg): "); err != nil {
		return fmt.Errorf("failed to read image path: %w", err)
	}

	post, err := c.api.CreatePost(ctx, token, draft)
	if err != nil {
		return serverError(err)
	}

	c.io.Println()
	c.io.Println("✓ Post created!")
	c.io.Printf("ID: %s\n", post.ID)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	postID, err := requireArg(args, "edit <id>")
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	current, err := c.api.GetPost(ctx, token, postID)
	if err != nil {
		return serverError(err)
	}

	c.io.Println("=== Edit Post ===")
	c.io.Println("Press Enter to keep the current value.")
	c.io.Println()

	draft := clientapi.PostDraft{Title: current.Title, Content: current.Content}
	if err := c.promptKeep("Title", &draft.Title); err != nil {
		return err
	}
	if err := c.promptKeep("Content", &draft.Content); err != nil {
		return err
	}
	if draft.ImagePath, err = c.io.ReadInput(fmt.Sprintf("New image file [%s]: ", current.ImageURL)); err != nil {
		return fmt.Errorf("failed to read image path: %w", err)
	}

	post, err := c.api.UpdatePost(ctx, token, postID, draft)
	if err != nil {
		return serverError(err)
	}

	c.io.Println()
	c.io.Println("✓ Post updated!")
	c.printPost(post)
	return nil
}

// promptKeep запрашивает новое значение; пустой ввод оставляет текущее
func (c *Cli) promptKeep(field string, value *string) error {
	input, err := c.io.ReadInput(fmt.Sprintf("%s [%s]: ", field, *value))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", strings.ToLower(field), err)
	}
	if input != "" {
		*value = input
	}
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	postID, err := requireArg(args, "delete <id>")
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	post, err := c.api.GetPost(ctx, token, postID)
	if err != nil {
		return serverError(err)
	}

	c.io.Println("=== Delete Post ===")
	c.io.Println()
	c.io.Printf("Title: %s\n", post.Title)
	c.io.Printf("ID:    %s\n", post.ID)
	c.io.Println()

	confirm, err := c.io.ReadInput("Are you sure you want to delete this post? (yes/no): ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if answer := strings.ToLower(confirm); answer != "yes" && answer != "y" {
		c.io.Println("Deletion cancelled.")
		return nil
	}

	if err := c.api.DeletePost(ctx, token, postID); err != nil {
		return serverError(err)
	}

	c.io.Println("✓ Post deleted")
	return nil
}
