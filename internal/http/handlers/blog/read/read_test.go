package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/summraize/summraize-backend/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, slug string) (*models.Post, error) {
	args := m.Called(ctx, slug)
	if res := args.Get(0); res != nil {
		return res.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение записи",
			url:  "/blog/hello-world-1700000000",
			setupMock: func(m *MockService) {
				post := &models.Post{
					ID:    1,
					Slug:  "hello-world-1700000000",
					Title: "Hello World",
				}
				m.On("Read", mock.Anything, "hello-world-1700000000").Return(post, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Hello World"`,
		},
		{
			name: "запись не найдена",
			url:  "/blog/missing",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "missing").Return(nil, errors.New("post not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"post not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockService{}
			tt.setupMock(service)
			handler := New(logger, service)

			router := chi.NewRouter()
			router.Get("/blog/{slug}", handler.ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			service.AssertExpectations(t)
		})
	}
}
