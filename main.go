package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/agriquest/app"
	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/config"
	"github.com/mbolis/agriquest/database"
	"github.com/mbolis/agriquest/httpx"
	"github.com/mbolis/agriquest/log"
	"github.com/mbolis/agriquest/routes"
	"github.com/mbolis/agriquest/routes/middlewares"
	"github.com/mbolis/agriquest/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	logFile := log.Setup(level, log.FileOptions{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxAge:     cfg.LogMaxAge,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer logFile.Close()

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	st := store.New(db)
	if cfg.AdminPassword != "" {
		err = st.SeedUser(context.Background(), cfg.AdminUser, cfg.AdminPassword, middlewares.AdminRole)
		if err != nil {
			log.Fatal("main.db.seed_admin:", err)
		}
	}

	app := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Backend:      backend.New(cfg.BackendURL, cfg.BackendAPIKey, cfg.BackendTimeout),
		Store:        st,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 30*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Listening on %s, backend at %s", cfg.Url(), cfg.BackendURL)
	return srv.ListenAndServe()
}
