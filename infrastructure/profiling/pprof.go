// Package profiling starts the optional pprof endpoint and Pyroscope agent for the serve command.
package profiling

import (
	"errors"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // registers handlers on DefaultServeMux, bound to localhost only
	"os"
	"time"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
)

const (
	defaultPprofPort  = "6060"
	pprofReadTimeout  = 10 * time.Second
	pprofWriteTimeout = 60 * time.Second
)

// StartPprofServer serves /debug/pprof on localhost when ENABLE_PROFILING=true.
// PPROF_PORT overrides the default port 6060. It returns the server, or nil when disabled.
func StartPprofServer(log logger.Logger) *http.Server {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return nil
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}

	srv := &http.Server{
		Addr:         "localhost:" + port,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  pprofReadTimeout,
		WriteTimeout: pprofWriteTimeout,
	}

	go func() {
		log.Info("Starting pprof server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()

	return srv
}
