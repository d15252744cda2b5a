package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/storage"
)

// postDoc is the BSON shape of a post.
// Имя автора денормализовано: имя пользователя не меняется после регистрации.
// Seq упорядочивает посты, созданные в одну миллисекунду.
type postDoc struct {
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
	ID          string             `bson:"_id"`
	Title       string             `bson:"title"`
	Content     string             `bson:"content"`
	ImageURL    string             `bson:"image_url"`
	CreatorID   string             `bson:"creator_id"`
	CreatorName string             `bson:"creator_name"`
	Seq         primitive.ObjectID `bson:"seq"`
}

func (d *postDoc) model() *models.Post {
	return &models.Post{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		Creator:   models.Creator{ID: d.CreatorID, Name: d.CreatorName},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CreatePost inserts a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	creator, err := s.GetUserByID(ctx, post.Creator.ID)
	if err != nil {
		return err
	}

	_, err = s.posts.InsertOne(ctx, postDoc{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		ImageURL:    post.ImageURL,
		CreatorID:   creator.ID,
		CreatorName: creator.Name,
		Seq:         primitive.NewObjectID(),
		CreatedAt:   post.CreatedAt.UTC(),
		UpdatedAt:   post.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetPost retrieves a post by ID
func (s *Storage) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return doc.model(), nil
}

// ListPosts returns one page of posts, newest first
func (s *Storage) ListPosts(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	if offset < 0 || limit <= 0 {
		return []*models.Post{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*models.Post{}
	for cursor.Next(ctx) {
		var doc postDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode post: %w", err)
		}
		posts = append(posts, doc.model())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// CountPosts returns the total number of posts
func (s *Storage) CountPosts(ctx context.Context) (int, error) {
	count, err := s.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return int(count), nil
}

// CountPostsWithImage returns how many posts reference imageURL
func (s *Storage) CountPostsWithImage(ctx context.Context, imageURL string) (int, error) {
	count, err := s.posts.CountDocuments(ctx, bson.M{"image_url": imageURL})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts by image: %w", err)
	}
	return int(count), nil
}

// UpdatePost replaces the mutable fields of a post
func (s *Storage) UpdatePost(ctx context.Context, post *models.Post) error {
	result, err := s.posts.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"title":      post.Title,
		"content":    post.Content,
		"image_url":  post.ImageURL,
		"updated_at": post.UpdatedAt.UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.MatchedCount == 0 {
		return storage.ErrPostNotFound
	}
	return nil
}

// DeletePost deletes post by ID
func (s *Storage) DeletePost(ctx context.Context, postID string) error {
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return storage.ErrPostNotFound
	}
	return nil
}
