// Command wellness is a terminal daily wellness checklist.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nhle/wellness/internal/app"
	"github.com/nhle/wellness/internal/logging"
	"github.com/nhle/wellness/internal/model"
	"github.com/nhle/wellness/internal/server"
	"github.com/nhle/wellness/internal/service"
	"github.com/nhle/wellness/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wellness: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config.yaml")
	flag.Parse()

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	created, err := model.InitConfig(*configPath)
	if err != nil {
		return err
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log, logFile, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	var cl closers
	cl.add(closerFunc(logFile))
	defer cl.closeAll(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
		return fmt.Errorf("opening store: %w", err)
	}
	cl.add(st.Close)

	blobs, err := openBlobs(ctx, cfg.Images, &cl)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Images.Backend).Msg("failed to open image store")
		return fmt.Errorf("opening image store: %w", err)
	}

	sessions, err := openSessionStore(ctx, cfg.Session, &cl)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.Session.Backend).Msg("failed to open session store")
		return fmt.Errorf("opening session store: %w", err)
	}

	loc := cfg.Location()
	opts := []service.Option{
		service.WithLogger(log),
		service.WithLocation(loc),
		service.WithTimeout(cfg.StoreTimeout()),
	}
	todos := service.NewTodos(st, opts...)
	feed := service.NewFeed(st, cfg.Display.FeedLimit, opts...)

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server.Addr, server.Deps{Store: st, Blobs: blobs, Feed: feed}, log)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Str("addr", cfg.Server.Addr).Msg("http server stopped")
			}
		}()
		// cancel before waiting so Run begins its graceful shutdown
		cl.add(func() error {
			cancel()
			<-done
			return nil
		})
	}

	m := app.New(app.Deps{
		Todos:            todos,
		Auth:             service.NewAuth(st, todos, opts...),
		Comments:         service.NewComments(st, opts...),
		Images:           service.NewImages(st, blobs, cfg.Images.PublicBaseURL, cfg.Images.MaxBytes, opts...),
		Feed:             feed,
		Sessions:         session.NewManager(sessions, log),
		Log:              log,
		Location:         loc,
		ReminderInterval: time.Duration(cfg.Display.ReminderIntervalSec) * time.Second,
	})

	if created {
		log.Info().Str("path", *configPath).Msg("wrote default config")
	}
	log.Info().
		Str("store", cfg.Store.Driver).
		Str("images", cfg.Images.Backend).
		Str("session", cfg.Session.Backend).
		Bool("server", cfg.Server.Enabled).
		Msg("starting")

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
