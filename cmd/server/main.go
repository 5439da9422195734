package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"agenthub/services/chat-api/internal/config"
	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/infrastructure/database"
	"agenthub/services/chat-api/internal/infrastructure/database/repository/agentrepo"
	"agenthub/services/chat-api/internal/infrastructure/database/repository/conversationrepo"
	"agenthub/services/chat-api/internal/infrastructure/database/repository/tenantrepo"
	"agenthub/services/chat-api/internal/infrastructure/database/repository/usagerepo"
	"agenthub/services/chat-api/internal/infrastructure/database/transaction"
	"agenthub/services/chat-api/internal/infrastructure/inference"
	"agenthub/services/chat-api/internal/infrastructure/logger"
	"agenthub/services/chat-api/internal/infrastructure/retention"
	"agenthub/services/chat-api/internal/infrastructure/vault"
	"agenthub/services/chat-api/internal/interfaces/httpserver"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/agenthandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/chathandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/conversationhandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/settingshandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/subscriptionhandler"
	"agenthub/services/chat-api/internal/interfaces/httpserver/handlers/usagehandler"
	v1 "agenthub/services/chat-api/internal/interfaces/httpserver/routes/v1"
	"agenthub/services/chat-api/internal/utils/httpclients"

	_ "agenthub/services/chat-api/internal/infrastructure/database/dbschema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.GetLogger()
		fallback.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fallback := logger.GetLogger()
		fallback.Fatal().Err(err).Msg("configure logger")
	}

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if cfg.AutoMigrate {
		if err := database.Migration(db, "chat_api."); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	keyVault, err := vault.New(cfg.EncryptionKey, cfg.PreviousEncryption...)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize credential vault")
	}

	txDB := transaction.NewDatabase(db)
	tenantRepo := tenantrepo.NewTenantGormRepository(txDB)
	agentRepo := agentrepo.NewAgentGormRepository(txDB)
	conversationRepo := conversationrepo.NewConversationGormRepository(txDB)
	usageRepo := usagerepo.NewUsageGormRepository(txDB)

	tenantService := tenant.NewService(tenantRepo, keyVault)
	agentService := agent.NewService(agentRepo)
	conversationService := conversation.NewService(conversationRepo, conversationRepo)

	registry := inference.NewRegistry(
		inference.NewOpenAIProvider(httpclients.NewClient("openai"), cfg.OpenAIBaseURL),
		inference.NewAnthropicProvider(httpclients.NewClient("anthropic"), cfg.AnthropicBaseURL),
	)

	v1Route := v1.NewV1Route(
		chathandler.NewChatHandler(tenantService, agentService, conversationService, registry, cfg),
		agenthandler.NewAgentHandler(tenantService, agentService),
		conversationhandler.NewConversationHandler(tenantService, conversationService),
		settingshandler.NewSettingsHandler(tenantService),
		usagehandler.NewUsageHandler(tenantService, usageRepo),
		subscriptionhandler.NewSubscriptionHandler(tenantService),
	)

	server := httpserver.NewHTTPServer(v1Route, log, cfg)
	sweeper := retention.NewSweeper(tenantRepo, conversationRepo, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.BootstrapTenantID != "" {
		if _, err := tenantService.Bootstrap(ctx, cfg.BootstrapTenantID, cfg.BootstrapTenantName); err != nil {
			log.Fatal().Err(err).Msg("bootstrap tenant")
		}
	}

	var eg errgroup.Group
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := sweeper.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := server.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("metrics_port", cfg.MetricsPort).
		Str("service", cfg.ServiceName).
		Msg("chat-api started")

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
