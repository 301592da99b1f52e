package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskrouter/internal/config"
	"taskrouter/internal/crypto"
	"taskrouter/internal/events"
	"taskrouter/internal/intent"
	"taskrouter/internal/pipeline"
	"taskrouter/internal/policy"
	"taskrouter/internal/repository"
	"taskrouter/internal/routing"
	"taskrouter/internal/server"
	"taskrouter/internal/service"
	"taskrouter/internal/session"
	"taskrouter/internal/store"
	"taskrouter/internal/telegram_bot"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repository.MigrateDB(db, logger)

	cipher, err := crypto.NewCipher(cfg.Encryption.MasterKeyBase64)
	if err != nil {
		logger.Fatal("Failed to initialize encryption", zap.Error(err))
	}

	taskRepo := repository.NewTaskRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(db, logger)
	authRepo := repository.NewAuthRepository(db, logger)

	if count, err := authRepo.CountUsers(context.Background()); err != nil {
		logger.Warn("Failed to count users", zap.Error(err))
	} else if count == 0 {
		logger.Info("No users registered yet; create the first account via POST /api/auth/register")
	}

	// One vocabulary, one rule-based classifier, shared by every call site.
	vocabulary := intent.NewVocabulary(cfg.Classifier.ExtraVerbs)
	rules := intent.NewRuleBased(vocabulary)

	var detector intent.Detector = rules
	if cfg.AssistedClassifier.Enabled {
		timeout := time.Duration(cfg.AssistedClassifier.TimeoutSeconds) * time.Second
		assistedClient := intent.NewAssistedClient(cfg.AssistedClassifier.URL, timeout)
		detector = intent.NewAssistedDetector(rules, assistedClient, timeout, logger)
		logger.Info("Assisted classifier enabled",
			zap.String("url", cfg.AssistedClassifier.URL),
			zap.Duration("timeout", timeout))
	}

	router := routing.NewRouter(routing.Thresholds{
		SchedulingFanoutLimit: cfg.Routing.SchedulingFanoutLimit,
		OutreachFanoutLimit:   cfg.Routing.OutreachFanoutLimit,
	}, logger)

	policies := policy.NewSelector(cfg.AccessPolicy.Mode, logger)
	taskStore := store.NewTaskStore(taskRepo, policies, cipher, logger)
	sessions := session.NewResolver(sessionRepo, logger)
	roles := pipeline.NewRepoRoleDirectory(authRepo, logger)

	publisher := events.NewFanout(logger, events.NewLogPublisher(logger))
	processor := pipeline.NewProcessor(rules, detector, router, taskStore, sessions, roles, publisher, logger)

	var bot *telegram_bot.Bot
	if cfg.Telegram.Enabled {
		bot, err = telegram_bot.NewBot(cfg.Telegram.BotToken, cfg.Telegram.NotifyChatID, rules, processor, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram adapter, continuing without it", zap.Error(err))
			bot = nil
		}
	}
	if bot != nil {
		publisher.Add(bot)
	}

	authService := service.NewAuthService(authRepo, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if bot != nil {
		go func() {
			if err := bot.Start(ctx); err != nil {
				logger.Error("Telegram adapter failed", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(authService, taskStore, sessions, processor, logger)
	go srv.Run(":" + cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
