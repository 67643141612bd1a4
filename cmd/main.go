package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	httpapi "github.com/immxrtalbeast/tempvoice/internal/api/http"
	"github.com/immxrtalbeast/tempvoice/internal/api/interaction"
	"github.com/immxrtalbeast/tempvoice/internal/config"
	"github.com/immxrtalbeast/tempvoice/internal/platform/discord"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/immxrtalbeast/tempvoice/internal/service"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
	"github.com/immxrtalbeast/tempvoice/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("application stopped", sl.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rooms, setups, err := setupStores(cfg.Database, log)
	if err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers
	session.Client.Timeout = cfg.Discord.RequestTimeout

	client := discord.NewClient(session, cfg.Discord.RequestTimeout, log)

	sweeper := service.NewSweeper(rooms, client, cfg.Sweeper.EmptyGrace, log)
	roomService := service.NewRoomService(rooms, setups, client, sweeper, service.RoomOptions{
		NameTemplate:              cfg.Rooms.NameTemplate,
		MaxNameLength:             cfg.Rooms.MaxNameLength,
		MaxUserLimit:              cfg.Rooms.MaxUserLimit,
		ClaimRequiresOfflineOwner: cfg.Rooms.ClaimRequiresOfflineOwner,
	}, log)
	setupService := service.NewSetupService(setups, client, log)

	router := interaction.NewRouter(roomService, setupService, log)
	discord.NewGateway(router, roomService, log).Register(session)

	guildController := httpapi.NewGuildController(roomService, setupService, sweeper)
	server := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: httpapi.SetupRouter(guildController, httpapi.RouterOptions{
			AllowOrigins: cfg.HTTP.AllowOrigins,
			AdminToken:   cfg.HTTP.AdminToken,
		}, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer session.Close()

	log.Info("starting application",
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTP.Address),
		slog.Duration("sweep_interval", cfg.Sweeper.Interval),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(ctx, cfg.Sweeper.Interval)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupStores(cfg config.DatabaseConfig, log *slog.Logger) (repository.RoomRepository, repository.SetupRepository, error) {
	if cfg.DSN == "" {
		log.Warn("database dsn is empty, rooms are kept in memory")
		return repository.NewInMemoryRoomRepository(), repository.NewInMemorySetupRepository(), nil
	}

	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return repository.NewPostgresRoomRepository(db), repository.NewPostgresSetupRepository(db), nil
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
