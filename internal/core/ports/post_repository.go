package ports

import (
	"context"

	"github.com/inkpost/blog-api/internal/core/domain"
)

// PostRepository persists posts. Reads return posts with Author populated.
type PostRepository interface {
	List(ctx context.Context) ([]domain.Post, error)
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, id string, title, content string) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}

// FeedCache holds the rendered public post list between writes. Entries are
// tagged with a generation: Get reports the current one, Set stores under the
// generation the caller read, and Invalidate advances it. A list read from
// storage before a write therefore never becomes visible after that write.
type FeedCache interface {
	Get(ctx context.Context) (posts []domain.Post, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, posts []domain.Post) error
	Invalidate(ctx context.Context) error
}
