package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const shutdownTimeout = 10 * time.Second

// newHTTPHandler routes /healthz and hands everything else to the MCP
// streamable HTTP handler. Panics are recovered and requests are logged in
// combined log format.
func newHTTPHandler(server *mcp.Server, logger *log.Logger) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	}).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))

	access := logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	recovery := logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})

	h := handlers.CombinedLoggingHandler(access.Writer(), router)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recovery))(h)
}

// serveHTTP runs the streamable HTTP transport on addr until ctx is done.
func serveHTTP(ctx context.Context, server *mcp.Server, addr string, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newHTTPHandler(server, logger),
		ReadHeaderTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting MCP HTTP server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down MCP HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
