package summraize

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/summraize/summraize-backend/internal/cache"
	"github.com/summraize/summraize-backend/internal/config"
	"github.com/summraize/summraize-backend/internal/lib/jwt"
	librabbitmq "github.com/summraize/summraize-backend/internal/lib/rabbitmq"
	"github.com/summraize/summraize-backend/internal/migrations"
	"github.com/summraize/summraize-backend/internal/providers/chat"
	"github.com/summraize/summraize-backend/internal/providers/deepgram"
	"github.com/summraize/summraize-backend/internal/providers/googletts"
	"github.com/summraize/summraize-backend/internal/providers/unsplash"
	"github.com/summraize/summraize-backend/internal/rabbitmq"
	audioservice "github.com/summraize/summraize-backend/internal/services/audio"
	authservice "github.com/summraize/summraize-backend/internal/services/auth"
	blogservice "github.com/summraize/summraize-backend/internal/services/blog"
	creditsservice "github.com/summraize/summraize-backend/internal/services/credits"
	paymentservice "github.com/summraize/summraize-backend/internal/services/payment"
	speechservice "github.com/summraize/summraize-backend/internal/services/speech"
	summaryservice "github.com/summraize/summraize-backend/internal/services/summary"
	"github.com/summraize/summraize-backend/internal/storage/repository"
	"github.com/streadway/amqp"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AmqpURL, cfg.ConnectRetries, cfg.ConnectRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReceiptQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := librabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	creditsService := creditsservice.New(db, logger)

	transcriber := deepgram.NewClient(cfg.DeepgramAPIKey)
	audioService := audioservice.New(transcriber, creditsService, logger)

	summarizers := []summaryservice.Summarizer{
		chat.NewOpenAI(cfg.OpenAIAPIKey),
		chat.NewDeepseek(cfg.DeepseekAPIKey),
	}
	summaryService := summaryservice.New(summarizers, creditsService, logger)

	synthesizer := googletts.NewClient(cfg.GoogleTTSAPIKey)
	speechService := speechservice.New(synthesizer, db, creditsService, logger)

	blogService := blogservice.New(db, cacheRedis, logger)
	imageClient := unsplash.NewClient(cfg.UnsplashAccessKey)

	paymentService := paymentservice.New(cfg.WebhookSecret, creditsService, db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:    authService,
		Credits: creditsService,
		Audio:   audioService,
		Summary: summaryService,
		Speech:  speechService,
		Blog:    blogService,
		Images:  imageClient,
		Payment: paymentService,
		Storage: db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
