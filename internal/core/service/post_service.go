package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpost/blog-api/internal/core/domain"
	"github.com/inkpost/blog-api/internal/core/ports"
	"github.com/inkpost/blog-api/internal/pkg/metrics"
)

type PostService struct {
	repo   ports.PostRepository
	cache  ports.FeedCache
	logger zerolog.Logger
}

// NewPostService returns a PostService. cache may be nil, in which case every
// List goes to the repository.
func NewPostService(repo ports.PostRepository, cache ports.FeedCache, logger zerolog.Logger) *PostService {
	return &PostService{repo: repo, cache: cache, logger: logger}
}

// List returns every post newest first. Cache errors are logged and the
// repository is used instead.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	var (
		gen       int64
		cacheable bool
	)
	if s.cache != nil {
		posts, g, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("feed cache read failed, falling back to storage")
		case ok:
			metrics.FeedCacheTotal.WithLabelValues("hit").Inc()
			return posts, nil
		default:
			metrics.FeedCacheTotal.WithLabelValues("miss").Inc()
			gen, cacheable = g, true
		}
	}

	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, gen, posts); err != nil {
			s.logger.Warn().Err(err).Msg("feed cache write failed")
		}
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PostService) Create(ctx context.Context, author domain.Identity, in ports.PostInput) (*domain.Post, error) {
	in, err := cleanPostInput(in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post, err := s.repo.Create(ctx, &domain.Post{
		Title:     in.Title,
		Content:   in.Content,
		Author:    domain.Author{ID: author.UserID},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", author.UserID).Msg("failed to create post")
		return nil, err
	}

	metrics.PostWritesTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("post_id", post.ID).Str("author_id", author.UserID).Msg("post created")
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id string, in ports.PostInput) (*domain.Post, error) {
	in, err := cleanPostInput(in)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Update(ctx, id, in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	metrics.PostWritesTotal.WithLabelValues("update").Inc()
	s.logger.Info().Str("post_id", id).Msg("post updated")
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.PostWritesTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("post_id", id).Msg("post deleted")
	s.invalidate(ctx)
	return nil
}

func (s *PostService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("feed cache invalidation failed")
	}
}

func cleanPostInput(in ports.PostInput) (ports.PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return in, domain.NewValidationError("title and content are required")
	}
	return in, nil
}
