package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"stockquotes/internal/provider"
)

type server struct {
	providers provider.Registry
	log       logrus.FieldLogger
	timeout   time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Providers []string `json:"providers"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{provider}/{ticker}", s.handleQuote)
	// the browser frontend calls the /api prefix
	mux.HandleFunc("GET /api/{provider}/{ticker}", s.handleQuote)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Message:   "Stock Price Check App is running",
		Providers: s.providers.Names(),
	})
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	ticker := strings.TrimSpace(r.PathValue("ticker"))

	p, ok := s.providers.Lookup(name)
	if !ok {
		msg := fmt.Sprintf("Unknown provider %q. Available: %s", name, strings.Join(s.providers.Names(), ", "))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}
	if ticker == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Ticker symbol is required"})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := p.Fetch(ctx, ticker)
	if err != nil {
		s.writeError(w, name, ticker, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeError is the only place a fetch failure becomes an HTTP status.
func (s *server) writeError(w http.ResponseWriter, name, ticker string, err error) {
	kind := provider.KindOf(err)
	status, msg := http.StatusInternalServerError, err.Error()
	switch kind {
	case provider.KindValidation:
		status = http.StatusBadRequest
	case provider.KindNotFound:
		status = http.StatusNotFound
	case provider.KindNetwork:
		status = http.StatusBadGateway
	case provider.KindTimeout:
		status = http.StatusGatewayTimeout
		msg = "Request timed out. Please try again."
	case provider.KindConfig:
		status = http.StatusInternalServerError
	default:
		msg = "Unexpected error: " + msg
	}

	entry := s.log.WithFields(logrus.Fields{"provider": name, "ticker": ticker, "kind": kind.String()}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("fetch failed")
	} else {
		entry.Warn("fetch failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
