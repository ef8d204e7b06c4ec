package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-donor-portal/internal/config"
	"github.com/jrsteele09/go-donor-portal/internal/logging"
	"github.com/jrsteele09/go-donor-portal/kvstore"
	"github.com/jrsteele09/go-donor-portal/server"
	"github.com/rs/zerolog/log"
)

const (
	janitorInterval = 10 * time.Minute
	sessionIdleTime = time.Hour
	sessionFileName = "browser-sessions.json"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	portal, err := server.New(c, store)
	if err != nil {
		return err
	}
	go portal.RunJanitor(ctx, janitorInterval, sessionIdleTime)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: portal, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// openStore picks redis when REDIS_URL is set, a JSON file under FOLDER when
// that is set, else an in-memory store that forgets every browser on restart
func openStore(ctx context.Context, c config.Config) (kvstore.Store, func(), error) {
	if c.GetRedisURL() == "" {
		if folder := c.GetDataFolder(); folder != "" {
			store, err := kvstore.NewFileStore(filepath.Join(folder, sessionFileName))
			if err != nil {
				return nil, nil, fmt.Errorf("openStore: %w", err)
			}
			log.Info().Str("path", store.Path()).Msg("browser sessions stored on disk")
			return store, func() {}, nil
		}
		log.Warn().Msg("REDIS_URL and FOLDER not set, browser sessions are kept in memory")
		return kvstore.NewInMemory(), func() {}, nil
	}
	client, err := kvstore.DialRedis(ctx, c.GetRedisURL())
	if err != nil {
		return nil, nil, fmt.Errorf("openStore: %w", err)
	}
	log.Info().Str("addr", client.Options().Addr).Msg("browser sessions stored in redis")
	store := kvstore.NewRedisStore(client, kvstore.WithKeyTTL(c.GetStorageKeyTTL()))
	return store, func() { _ = client.Close() }, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
