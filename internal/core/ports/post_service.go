package ports

import (
	"context"

	"github.com/inkpost/blog-api/internal/core/domain"
)

type PostInput struct {
	Title   string
	Content string
}

type PostService interface {
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, author domain.Identity, in PostInput) (*domain.Post, error)
	Update(ctx context.Context, id string, in PostInput) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}
