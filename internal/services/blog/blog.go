// Package blog содержит бизнес-логику для управления статьями блога
// и их кешированием.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosimple/slug"

	"github.com/summraize/summraize-backend/internal/models"
)

// BlogRepository определяет методы для работы со статьями в хранилище.
type BlogRepository interface {
	// CreatePost добавляет новую статью и возвращает её ID.
	CreatePost(ctx context.Context, post models.Post) (int, error)
	// GetPostBySlug возвращает статью по slug.
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	// GetPostSlugByID возвращает slug статьи по её ID.
	GetPostSlugByID(ctx context.Context, id int) (string, error)
	// UpdatePost обновляет статью по ID и возвращает количество обновлённых записей.
	UpdatePost(ctx context.Context, post models.Post, id int) (int64, error)
	// RemovePost удаляет статью по ID и возвращает количество удалённых записей.
	RemovePost(ctx context.Context, id int) (int64, error)
	// ListPosts возвращает список статей с пагинацией.
	ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Post, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// BlogService реализует бизнес-логику работы со статьями, включая кеширование.
type BlogService struct {
	repo  BlogRepository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый экземпляр BlogService.
func New(repo BlogRepository, cache Cache, log *slog.Logger) *BlogService {
	return &BlogService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// Create создает новую статью. Slug формируется из заголовка с суффиксом
// из метки времени, чтобы одинаковые заголовки не конфликтовали.
func (s *BlogService) Create(ctx context.Context, author string, req models.DummyPost) (*models.Post, error) {
	postSlug := fmt.Sprintf("%s-%d", slug.Make(req.Title), s.now().Unix())

	post := models.Post{
		Slug:         postSlug,
		Title:        req.Title,
		Content:      req.Content,
		Excerpt:      req.Excerpt,
		CoverImage:   req.CoverImage,
		CoverCaption: req.CoverCaption,
		Author:       author,
		Published:    req.Published,
	}

	id, err := s.repo.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id

	s.log.Info("created blog post", slog.Int("id", id), slog.String("slug", postSlug))
	return &post, nil
}

// Read возвращает статью по slug, используя кеш или репозиторий.
func (s *BlogService) Read(ctx context.Context, postSlug string) (*models.Post, error) {
	var result *models.Post
	cacheKey := "blog:" + postSlug
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to cache blog post", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

// Update обновляет статью и инвалидирует кеш. Slug для ключа кеша
// запрашивается из хранилища по ID.
func (s *BlogService) Update(ctx context.Context, id int, req models.DummyPost) (int64, error) {
	post := models.Post{
		Title:        req.Title,
		Content:      req.Content,
		Excerpt:      req.Excerpt,
		CoverImage:   req.CoverImage,
		CoverCaption: req.CoverCaption,
		Published:    req.Published,
	}
	count, err := s.repo.UpdatePost(ctx, post, id)
	if err != nil {
		return 0, err
	}

	s.invalidateByID(ctx, id)
	return count, nil
}

// Remove удаляет статью по ID и инвалидирует кеш.
func (s *BlogService) Remove(ctx context.Context, id int) (int64, error) {
	s.invalidateByID(ctx, id)
	return s.repo.RemovePost(ctx, id)
}

// invalidateByID снимает запись из кеша по slug, найденному в хранилище.
// Отсутствие записи не ошибка: инвалидировать тогда нечего.
func (s *BlogService) invalidateByID(ctx context.Context, id int) {
	postSlug, err := s.repo.GetPostSlugByID(ctx, id)
	if err != nil {
		s.log.Warn("failed to resolve post slug", slog.Int("id", id), slog.Any("err", err))
		return
	}
	cacheKey := "blog:" + postSlug
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

// List возвращает список статей. Для роли admin включаются черновики.
func (s *BlogService) List(ctx context.Context, role string, limit, offset int) ([]*models.Post, error) {
	publishedOnly := role != "admin"
	return s.repo.ListPosts(ctx, publishedOnly, limit, offset)
}
