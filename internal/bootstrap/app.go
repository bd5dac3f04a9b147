package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"medbill-amounts/internal/amounts"
	"medbill-amounts/internal/llm"
	"medbill-amounts/internal/llm/gemini"
	"medbill-amounts/internal/services/health"
	"medbill-amounts/internal/shared/config"
	"medbill-amounts/internal/shared/server"
	"medbill-amounts/internal/shared/storage/object"
	localstore "medbill-amounts/internal/shared/storage/object/local"
	s3store "medbill-amounts/internal/shared/storage/object/s3"
	"medbill-amounts/internal/shared/telemetry"
)

const (
	transportSDK  = "sdk"
	transportREST = "rest"
	storeS3       = "s3"
	storeLocal    = "local"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          object.ObjectStore
	LLM            llm.Client
	AmountsService *amounts.Service
	AmountsHandler *amounts.Handler
	Health         *health.Service

	closers []io.Closer
}

// Deps lets callers supply prebuilt collaborators, mostly for tests. Nil
// fields are built from the config.
type Deps struct {
	LLM   llm.Client
	Store object.ObjectStore
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Deps{})
}

// BuildWith is Build with optional prebuilt collaborators.
func BuildWith(cfg config.Config, deps Deps) (*App, error) {
	if strings.TrimSpace(cfg.UploadStore) == "" {
		cfg.UploadStore = storeLocal
	}
	if strings.TrimSpace(cfg.LLMTransport) == "" {
		cfg.LLMTransport = transportSDK
	}
	ctx := context.Background()

	app := &App{Config: cfg, Store: deps.Store, LLM: deps.LLM}

	if app.Store == nil {
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Store = store
	}

	if app.LLM == nil {
		client, closer, err := buildLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.LLM = client
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}

	app.AmountsService = &amounts.Service{
		LLM:         app.LLM,
		Store:       app.Store,
		Temperature: cfg.LLMTemperature,
	}
	app.AmountsHandler = amounts.NewHandler(app.AmountsService, cfg.MaxUploadBytes)
	app.Health = health.NewService(cfg.LLMModel, cfg.LLMTransport, cfg.UploadStore)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         app.Health,
		AmountsHandler: app.AmountsHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"model":     cfg.LLMModel,
		"transport": cfg.LLMTransport,
		"store":     cfg.UploadStore,
	})
	return app, nil
}

// Close releases provider connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.UploadStore {
	case storeS3:
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("s3 staging store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.UploadDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, io.Closer, error) {
	timeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second
	switch cfg.LLMTransport {
	case transportREST:
		client, err := gemini.NewRESTClient(cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMBaseURL, timeout)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, timeout)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
}
