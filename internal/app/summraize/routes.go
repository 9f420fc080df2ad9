// Package summraize предоставляет маршруты для основного приложения.
package summraize

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/summraize/summraize-backend/internal/http/handlers/auth/login"
	"github.com/summraize/summraize-backend/internal/http/handlers/auth/register"
	blogcreate "github.com/summraize/summraize-backend/internal/http/handlers/blog/create"
	"github.com/summraize/summraize-backend/internal/http/handlers/blog/imagesearch"
	bloglist "github.com/summraize/summraize-backend/internal/http/handlers/blog/list"
	blogread "github.com/summraize/summraize-backend/internal/http/handlers/blog/read"
	blogremove "github.com/summraize/summraize-backend/internal/http/handlers/blog/remove"
	blogupdate "github.com/summraize/summraize-backend/internal/http/handlers/blog/update"
	"github.com/summraize/summraize-backend/internal/http/handlers/credits/balance"
	"github.com/summraize/summraize-backend/internal/http/handlers/credits/check"
	"github.com/summraize/summraize-backend/internal/http/handlers/credits/estimate"
	"github.com/summraize/summraize-backend/internal/http/handlers/credits/operations"
	"github.com/summraize/summraize-backend/internal/http/handlers/health"
	"github.com/summraize/summraize-backend/internal/http/handlers/operations/processaudio"
	"github.com/summraize/summraize-backend/internal/http/handlers/operations/summarize"
	"github.com/summraize/summraize-backend/internal/http/handlers/operations/texttospeech"
	"github.com/summraize/summraize-backend/internal/http/handlers/payment/webhook"
	"github.com/summraize/summraize-backend/internal/http/middlewarectx"
	audioservice "github.com/summraize/summraize-backend/internal/services/audio"
	authservice "github.com/summraize/summraize-backend/internal/services/auth"
	blogservice "github.com/summraize/summraize-backend/internal/services/blog"
	creditsservice "github.com/summraize/summraize-backend/internal/services/credits"
	paymentservice "github.com/summraize/summraize-backend/internal/services/payment"
	speechservice "github.com/summraize/summraize-backend/internal/services/speech"
	summaryservice "github.com/summraize/summraize-backend/internal/services/summary"
	"github.com/summraize/summraize-backend/internal/storage/repository"
)

// Services собирает зависимости маршрутов.
type Services struct {
	Auth    *authservice.AuthService
	Credits *creditsservice.CreditsService
	Audio   *audioservice.AudioService
	Summary *summaryservice.SummaryService
	Speech  *speechservice.SpeechService
	Blog    *blogservice.BlogService
	Images  imagesearch.Service
	Payment *paymentservice.PaymentService
	Storage *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/blog", bloglist.New(logger, s.Blog).ServeHTTP)
		r.Get("/blog/{slug}", blogread.New(logger, s.Blog).ServeHTTP)
		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)

		// Webhook платёжного провайдера (подпись вместо JWT)
		r.Post("/payments/webhook", webhook.New(logger, s.Payment).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/credits", balance.New(logger, s.Credits).ServeHTTP)
			r.Post("/credits/check", check.New(logger, s.Credits).ServeHTTP)
			r.Post("/credits/estimate", estimate.New(logger).ServeHTTP)
			r.Get("/credits/operations", operations.New(logger, s.Credits).ServeHTTP)
			r.Post("/audio/process", processaudio.New(logger, s.Audio).ServeHTTP)
			r.Post("/summarize", summarize.New(logger, s.Summary).ServeHTTP)
			r.Post("/tts", texttospeech.New(logger, s.Speech).ServeHTTP)

			// Администрирование блога
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Post("/blog", blogcreate.New(logger, s.Blog).ServeHTTP)
				r.Put("/blog/{id}", blogupdate.New(logger, s.Blog).ServeHTTP)
				r.Delete("/blog/{id}", blogremove.New(logger, s.Blog).ServeHTTP)
				r.Get("/admin/images", imagesearch.New(logger, s.Images).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
