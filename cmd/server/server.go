package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"omnichat/internal/config"
	"omnichat/internal/domain/chat"
	"omnichat/internal/domain/endpoint"
	"omnichat/internal/infrastructure/database"
	"omnichat/internal/infrastructure/database/repository/endpointrepo"
	"omnichat/internal/infrastructure/database/repository/sessionrepo"
	"omnichat/internal/infrastructure/database/transaction"
	"omnichat/internal/infrastructure/logger"
	"omnichat/internal/infrastructure/storage"
	"omnichat/internal/interfaces/httpserver"
	"omnichat/internal/interfaces/httpserver/handlers/chathandler"
	"omnichat/internal/interfaces/httpserver/handlers/endpointhandler"
	"omnichat/internal/interfaces/httpserver/handlers/sessionhandler"
	"omnichat/internal/interfaces/httpserver/handlers/uploadhandler"
	v1 "omnichat/internal/interfaces/httpserver/routes/v1"
	chatroute "omnichat/internal/interfaces/httpserver/routes/v1/chat"
	"omnichat/internal/interfaces/httpserver/routes/v1/endpoints"
	"omnichat/internal/interfaces/httpserver/routes/v1/sessions"
	"omnichat/internal/relay"
	"omnichat/internal/utils/idgen"
	"omnichat/internal/utils/platformerrors"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	metricsSrv *http.Server
}

func (application *Application) Start() error {
	background := context.Background()
	_, cancel := context.WithCancel(background)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		err := application.metricsSrv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			cancel()
			return err
		}
		return nil
	})
	eg.Go(func() error {
		err := application.httpServer.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	return eg.Wait()
}

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	bootLog := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("configure logger")
	}
	log = log.With().Str("service", cfg.ServiceName).Logger()

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	txDB := transaction.NewDatabase(db)
	endpointRepo := endpointrepo.NewEndpointGormRepository(txDB)
	sessionRepo := sessionrepo.NewSessionGormRepository(txDB)

	if cfg.SeedPlatforms {
		if err := seedPlatforms(context.Background(), endpointRepo); err != nil {
			log.Fatal().Err(err).Msg("seed platforms")
		}
	}

	blobs, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init blob storage")
	}

	endpointService := endpoint.NewService(endpointRepo)
	sessionService := chat.NewService(sessionRepo)
	assembler := chat.NewHistoryAssembler(sessionRepo, blobs)
	recorder := chat.NewRecorder(sessionRepo)

	relayService := relay.New(
		resty.New(),
		recorder,
		blobs,
		relay.WithStreamTimeout(cfg.StreamTimeout),
		relay.WithImageTimeout(cfg.ImageGenerationTimeout),
	)

	chatHandler := chathandler.NewChatHandler(endpointService, assembler, recorder, relayService)
	endpointHandler := endpointhandler.NewEndpointHandler(endpointService)
	sessionHandler := sessionhandler.NewSessionHandler(sessionService)
	uploadHandler := uploadhandler.NewUploadHandler(blobs)

	v1Route := v1.NewV1Route(
		chatroute.NewChatRoute(chatHandler),
		endpoints.NewEndpointsRoute(endpointHandler),
		sessions.NewSessionsRoute(sessionHandler),
		uploadHandler,
	)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	application := &Application{
		httpServer: httpserver.NewHttpServer(v1Route, blobs, cfg, log),
		metricsSrv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler: metricsMux,
		},
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("metrics_port", cfg.MetricsPort).
		Str("environment", cfg.Environment).
		Msg("starting omnichat server")

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

var defaultPlatforms = []struct {
	name    string
	baseURL string
}{
	{"openai", "https://api.openai.com/v1"},
	{"anthropic", "https://api.anthropic.com/v1"},
	{"google", "https://generativelanguage.googleapis.com/v1beta"},
	{"together", "https://api.together.xyz/v1"},
}

// seedPlatforms inserts the well-known platform rows on first boot.
// Existing rows are left untouched so operators can edit base URLs.
func seedPlatforms(ctx context.Context, repo endpoint.Repository) error {
	log := logger.GetLogger()

	for _, entry := range defaultPlatforms {
		_, err := repo.GetPlatformByName(ctx, entry.name)
		if err == nil {
			continue
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return err
		}

		publicID, err := idgen.GenerateSecureID("plat", 16)
		if err != nil {
			return err
		}
		if err := repo.CreatePlatform(ctx, &endpoint.Platform{
			PublicID: publicID,
			Name:     entry.name,
			BaseURL:  entry.baseURL,
		}); err != nil {
			return err
		}
		log.Info().Str("platform", entry.name).Msg("seeded platform")
	}
	return nil
}
