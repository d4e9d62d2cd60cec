package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verifact/internal/queue"
	mid "verifact/internal/server/middleware"
	"verifact/internal/util"
	"verifact/pkg/ai"
	oai "verifact/pkg/ai/ollama"
	gai "verifact/pkg/ai/openai"
	"verifact/pkg/fetch"
	"verifact/pkg/leaselock"
	"verifact/pkg/logger"
	"verifact/pkg/search"
	pgxstore "verifact/pkg/store/pgx"
	"verifact/pkg/verify"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewAIClient builds the configured completion client. The adapter selection
// and env names are shared with the worker.
func NewAIClient() ai.VerifyAIClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewVerifyOllamaClient(oai.NewVerifyOllamaClientParams{
			CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewVerifyOpenAIClient(gai.NewVerifyOpenAIClientParams{
			CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

// NewSearcher builds the source discovery client from whatever search
// backends are configured. Missing keys just drop the backend.
func NewSearcher() *search.MultiSearcher {
	backends := []search.Backend{}

	if key := util.GetEnv("NEWSAPI_KEY"); key != "" {
		backends = append(backends, search.NewNewsAPIClient(key))
	}
	if key := util.GetEnv("GOOGLE_SEARCH_KEY"); key != "" {
		backends = append(backends, search.NewGoogleSearchClient(key, util.GetEnv("GOOGLE_SEARCH_ENGINE_ID")))
	}
	if len(backends) == 0 {
		logger.Warn("No search backends configured, source discovery will find nothing")
	}

	maxResults := int(util.GetEnvNumeric("SEARCH_MAX_RESULTS", 10))
	return search.NewMultiSearcher(maxResults, backends...)
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	err = queue.SetupQueues(ch, queue.Queues)
	if err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	st := pgxstore.NewStore(conn)
	svc := verify.NewService(
		st,
		NewAIClient(),
		NewSearcher(),
		fetch.NewWebFetcher(),
		leaselock.New(conn),
	)

	app := &mid.App{
		DBConn:       conn,
		Queue:        ch,
		Key:          &k,
		Store:        st,
		Verify:       svc,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
