// Command devbackend serves a local stand-in of the donor platform REST API
// with one seeded account per role.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-donor-portal/devbackend"
	"github.com/jrsteele09/go-donor-portal/internal/config"
	"github.com/jrsteele09/go-donor-portal/internal/logging"
	"github.com/rs/zerolog/log"
)

const defaultAddr = ":5000"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("devbackend stopped")
	}
}

func run() error {
	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())

	api, err := devbackend.New(devbackend.WithSecret(c.GetDevBackendSecret()))
	if err != nil {
		return err
	}

	addr := os.Getenv("DEVBACKEND_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	httpServer := &http.Server{Addr: addr, Handler: api, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("password", devbackend.DemoPassword).
			Strs("accounts", []string{devbackend.DemoAdminEmail, devbackend.DemoManagerEmail, devbackend.DemoDonorEmail, devbackend.DemoUserEmail}).
			Msg("devbackend listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("server.ListenAndServe %w", err)
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
