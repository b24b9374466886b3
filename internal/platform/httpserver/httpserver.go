package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

const maxHeaderBytes = 64 << 10

// New builds the ledger's HTTP server. Bodies are small JSON documents, so
// read and write timeouts stay short. Server-level errors go to log.
func New(addr string, handler http.Handler, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    maxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
}
