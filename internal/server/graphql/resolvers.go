package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/iudanet/feedhub/internal/models"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/pkg/api"
)

// Service is the set of feed operations exposed over GraphQL
type Service interface {
	Signup(ctx context.Context, in feed.SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*feed.LoginResult, error)
	Status(ctx context.Context) (*models.User, error)
	UpdateStatus(ctx context.Context, status string) (*models.User, error)
	ListPosts(ctx context.Context, page int) (*feed.PostPage, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, in feed.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, postID string, in feed.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

// Resolver is the root resolver of both RootQuery and RootMutation.
// Authentication is checked by the service, the permissive gate only
// puts the identity into the context.
type Resolver struct {
	svc Service
}

type userInput struct {
	Email    string
	Name     string
	Password string
}

type postInput struct {
	Title    string
	Content  string
	ImageURL *string
}

func (in postInput) toFeed() feed.PostInput {
	out := feed.PostInput{Title: in.Title, Content: in.Content}
	if in.ImageURL != nil {
		out.ImageURL = images.NormalizePath(*in.ImageURL)
	}
	return out
}

// CreateUser resolves createUser
func (r *Resolver) CreateUser(ctx context.Context, args struct{ UserInput userInput }) (*userResolver, error) {
	user, err := r.svc.Signup(ctx, feed.SignupInput{
		Email:    args.UserInput.Email,
		Password: args.UserInput.Password,
		Name:     args.UserInput.Name,
	})
	if err != nil {
		return nil, err
	}
	return &userResolver{u: user}, nil
}

// Login resolves login
func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authDataResolver, error) {
	result, err := r.svc.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, err
	}
	return &authDataResolver{res: result}, nil
}

// LoadPosts resolves loadPosts; a missing page means the first one
func (r *Resolver) LoadPosts(ctx context.Context, args struct{ Page *int32 }) (*postDataResolver, error) {
	page := 1
	if args.Page != nil {
		page = int(*args.Page)
	}

	result, err := r.svc.ListPosts(ctx, page)
	if err != nil {
		return nil, err
	}
	return &postDataResolver{page: result}, nil
}

// LoadPost resolves loadPost
func (r *Resolver) LoadPost(ctx context.Context, args struct{ ID graphql.ID }) (*postResolver, error) {
	post, err := r.svc.GetPost(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	return newPostResolver(post), nil
}

// CreatePost resolves createPost. The image is uploaded beforehand with
// PUT /post-image and passed as imageUrl.
func (r *Resolver) CreatePost(ctx context.Context, args struct{ PostInput postInput }) (*postResolver, error) {
	post, err := r.svc.CreatePost(ctx, args.PostInput.toFeed())
	if err != nil {
		return nil, err
	}
	return newPostResolver(post), nil
}

// UpdatePost resolves updatePost
func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID        graphql.ID
	PostInput postInput
}) (*postResolver, error) {
	post, err := r.svc.UpdatePost(ctx, string(args.ID), args.PostInput.toFeed())
	if err != nil {
		return nil, err
	}
	return newPostResolver(post), nil
}

// DeletePost resolves deletePost
func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.svc.DeletePost(ctx, string(args.ID)); err != nil {
		return false, err
	}
	return true, nil
}

// GetStatus resolves getStatus
func (r *Resolver) GetStatus(ctx context.Context) (*userResolver, error) {
	user, err := r.svc.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: user}, nil
}

// UpdateStatus resolves updateStatus
func (r *Resolver) UpdateStatus(ctx context.Context, args struct{ Status string }) (*userResolver, error) {
	user, err := r.svc.UpdateStatus(ctx, args.Status)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: user}, nil
}

type userResolver struct {
	u *models.User
}

func (r *userResolver) ID() graphql.ID { return graphql.ID(r.u.ID) }
func (r *userResolver) Name() string   { return r.u.Name }
func (r *userResolver) Email() string  { return r.u.Email }
func (r *userResolver) Status() string { return r.u.Status }

func (r *userResolver) Posts() []graphql.ID {
	ids := make([]graphql.ID, 0, len(r.u.Posts))
	for _, id := range r.u.Posts {
		ids = append(ids, graphql.ID(id))
	}
	return ids
}

type authDataResolver struct {
	res *feed.LoginResult
}

func (r *authDataResolver) Token() string  { return r.res.Token }
func (r *authDataResolver) UserID() string { return r.res.UserID }

type postDataResolver struct {
	page *feed.PostPage
}

func (r *postDataResolver) Posts() []*postResolver {
	out := make([]*postResolver, 0, len(r.page.Posts))
	for _, p := range r.page.Posts {
		out = append(out, newPostResolver(p))
	}
	return out
}

func (r *postDataResolver) TotalItems() int32 { return int32(r.page.TotalItems) }

// postResolver reads from the REST wire shape so both transports agree on
// id and timestamp formatting
type postResolver struct {
	p api.Post
}

func newPostResolver(p *models.Post) *postResolver {
	return &postResolver{p: feed.ToAPIPost(p)}
}

func (r *postResolver) ID() graphql.ID            { return graphql.ID(r.p.ID) }
func (r *postResolver) Title() string             { return r.p.Title }
func (r *postResolver) Content() string           { return r.p.Content }
func (r *postResolver) ImageURL() string          { return r.p.ImageURL }
func (r *postResolver) Creator() *creatorResolver { return &creatorResolver{c: r.p.Creator} }
func (r *postResolver) CreatedAt() string         { return r.p.CreatedAt }
func (r *postResolver) UpdatedAt() string         { return r.p.UpdatedAt }

type creatorResolver struct {
	c api.Creator
}

func (r *creatorResolver) ID() graphql.ID { return graphql.ID(r.c.ID) }
func (r *creatorResolver) Name() string   { return r.c.Name }

