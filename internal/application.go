package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/service"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/protocol"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp serves both transports until ctx is done or a server fails.
// Bot turns are shut down only after both servers have returned.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var archive repository.ArchiveRepository
	if conf.Archive.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		archive = repository.NewArchiveRepository(redisStorage, conf.Archive.TTL)
	}

	sessionRegistry := repository.NewSessionRegistry()
	gameService := service.NewGameService(sessionRegistry)
	gamePlayService := service.NewGamePlayService(sessionRegistry, service.NewBotService())

	hub := websocket.NewHub(logger.With("component", "hub"), archive)
	gameManager := usecase.NewGameManager(logger.With("component", "game_manager"), gameService, gamePlayService, hub, usecase.Options{
		BotTimeout:      conf.Game.BotTimeout,
		BotDelay:        conf.Game.BotDelay,
		SessionTTL:      conf.Game.SessionTTL,
		JanitorInterval: conf.Game.JanitorInterval,
	})
	defer gameManager.Close()

	go gameManager.RunJanitor(ctx)

	handler := protocol.NewHandler(logger.With("component", "protocol"), gameManager)

	var (
		servers sync.WaitGroup
		errMu   sync.Mutex
		runErr  error
	)

	serve := func(name string, start func(context.Context) error) {
		servers.Add(1)

		go func() {
			defer servers.Done()

			if err := start(ctx); err != nil {
				log.Error("server failed", "server", name, "error", err)

				errMu.Lock()
				runErr = errors.Join(runErr, fmt.Errorf("%s server error: %w", name, err))
				errMu.Unlock()

				cancel()
			}
		}()
	}

	log.Info("starting HTTP server", "port", conf.HTTPPort)
	restServer := rest.New(logger.With("component", "rest"), archive)
	serve("HTTP", func(ctx context.Context) error {
		return restServer.Start(ctx, conf.HTTPPort)
	})

	log.Info("starting WebSocket server", "port", conf.SocketPort)
	wsServer := websocket.New(logger.With("component", "websocket"), hub, handler)
	serve("WebSocket", func(ctx context.Context) error {
		return wsServer.Start(ctx, conf.SocketPort)
	})

	<-ctx.Done()
	log.Info("shutting down")

	servers.Wait()

	return runErr
}
