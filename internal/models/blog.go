// Package models содержит доменные структуры записей блога,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Post представляет собой запись блога, используемую в бизнес-логике
// и хранилище. Slug уникален и генерируется из заголовка.
type Post struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt,omitempty"`
	CoverImage   string    `json:"cover_image,omitempty"`
	CoverCaption string    `json:"cover_caption,omitempty"`
	Author       string    `json:"author,omitempty"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DummyPost используется для приёма данных записи из JSON-запроса,
// прежде чем конвертировать их в Post.
type DummyPost struct {
	Title        string `json:"title" validate:"required,min=3,max=200"` // Заголовок записи
	Content      string `json:"content" validate:"required"`             // Текст в markdown
	Excerpt      string `json:"excerpt"`                                 // Краткое описание
	CoverImage   string `json:"cover_image"`                             // URL обложки
	CoverCaption string `json:"cover_caption"`                           // Подпись обложки
	Author       string `json:"author"`                                  // Автор
	Published    bool   `json:"published"`                               // Флаг публикации
}
