// Package httpserver builds the process's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server whose write timeout outlasts the 30s handler timeout.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
