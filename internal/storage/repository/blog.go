package repository

import (
	"context"
	"fmt"

	"github.com/summraize/summraize-backend/internal/models"
)

// CreatePost сохраняет новую запись блога и возвращает её ID.
func (s *Storage) CreatePost(ctx context.Context, post models.Post) (int, error) {
	const op = "storage.CreatePost"

	var id int
	query := `INSERT INTO blog_posts
			      (title, slug, content, excerpt, cover_image, cover_caption, author, published)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	err := s.DB.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.Content, post.Excerpt,
		post.CoverImage, post.CoverCaption, post.Author, post.Published).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetPostBySlug возвращает запись блога по её slug.
func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "storage.GetPostBySlug"

	post := &models.Post{}
	query := `SELECT id, title, slug, content, excerpt, cover_image, cover_caption,
			      author, published, created_at, updated_at
			  FROM blog_posts
			  WHERE slug = $1`
	row := s.DB.QueryRowContext(ctx, query, slug)
	if err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
		&post.CoverImage, &post.CoverCaption, &post.Author, &post.Published,
		&post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// GetPostSlugByID возвращает slug записи блога по её ID.
func (s *Storage) GetPostSlugByID(ctx context.Context, id int) (string, error) {
	const op = "storage.GetPostSlugByID"

	var slug string
	err := s.DB.QueryRowContext(ctx, `SELECT slug FROM blog_posts WHERE id = $1`, id).Scan(&slug)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return slug, nil
}

// UpdatePost обновляет запись блога по ID, возвращает число изменённых строк.
func (s *Storage) UpdatePost(ctx context.Context, post models.Post, id int) (int64, error) {
	const op = "storage.UpdatePost"

	res, err := s.DB.ExecContext(ctx, `
		UPDATE blog_posts
		SET title = $1, content = $2, excerpt = $3, cover_image = $4,
		    cover_caption = $5, published = $6, updated_at = now()
		WHERE id = $7`,
		post.Title, post.Content, post.Excerpt, post.CoverImage,
		post.CoverCaption, post.Published, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// RemovePost удаляет запись блога по ID, возвращает число удалённых строк.
func (s *Storage) RemovePost(ctx context.Context, id int) (int64, error) {
	const op = "storage.RemovePost"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// ListPosts возвращает записи блога с пагинацией, новые первыми.
// При publishedOnly возвращаются только опубликованные записи.
func (s *Storage) ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Post, error) {
	const op = "storage.ListPosts"

	query := `SELECT id, title, slug, content, excerpt, cover_image, cover_caption,
			      author, published, created_at, updated_at
			  FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = true`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
			&post.CoverImage, &post.CoverCaption, &post.Author, &post.Published,
			&post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
