package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotson/iyb-printful-webhook/internal/metrics"
	"github.com/robotson/iyb-printful-webhook/internal/webhook"
)

// Webhook bodies are small event notifications; anything larger is abuse.
const maxBodyBytes = 1 << 20

// Notifier handles a classified event end to end.
type Notifier interface {
	OrderCreated(ctx context.Context, evt *webhook.Event) error
	PackageShipped(ctx context.Context, evt *webhook.Event) error
}

type Server struct {
	notifier          Notifier
	expectedUserAgent string
	logger            *slog.Logger
	mux               *http.ServeMux
}

func NewServer(notifier Notifier, expectedUserAgent string, logger *slog.Logger) *Server {
	s := &Server{
		notifier:          notifier,
		expectedUserAgent: expectedUserAgent,
		logger:            logger,
		mux:               http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", instrument("webhook", s.handleWebhook))
	s.mux.HandleFunc("GET /health", instrument("health", s.handleHealth))
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleWebhook gates, classifies, and dispatches a single inbound event.
// The gates run in a fixed order: shared-secret header, then method and
// content type, then body decode, then type classification. The header
// check is a shared-secret gate against casual callers, not authentication.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	userAgent := r.Header.Get("User-Agent")
	if userAgent != s.expectedUserAgent {
		s.logger.Error("webhook rejected: incorrect user agent", "user_agent", userAgent)
		writeText(w, http.StatusBadRequest, "Bad Request: incorrect user agent")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if r.Method != http.MethodPost || !strings.Contains(contentType, "application/json") {
		s.logger.Error("webhook rejected: not a JSON POST", "method", r.Method, "content_type", contentType)
		writeText(w, http.StatusBadRequest, "Bad Request: expected JSON POST")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		body = nil
	}

	evt, err := webhook.Parse(body)
	if err != nil {
		// Historical contract: an unparseable body is answered with the
		// generic success-shaped fallback, not a rejection.
		metrics.WebhookEventsTotal.WithLabelValues("unparseable", "fallback").Inc()
		s.logger.Error("webhook body parse failed", "err", err)
		writeText(w, http.StatusOK, "request received")
		return
	}

	if _, err := webhook.Classify(evt); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "rejected").Inc()
		s.logger.Error("webhook type not recognized", "type", evt.Type)
		writeText(w, http.StatusBadRequest,
			"Bad Request: the 'type' field is missing or not recognized. "+
				"Please ensure that the 'type' field is present and valid.")
		return
	}

	switch evt.Type {
	case webhook.TypeOrderCreated:
		if err := s.notifier.OrderCreated(r.Context(), evt); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "error").Inc()
			writeText(w, http.StatusInternalServerError, "order lookup failed")
			return
		}
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "processed").Inc()
		writeText(w, http.StatusOK, "webhook 'order_created' processed")

	case webhook.TypePackageShipped:
		// Send outcomes are logged but never surfaced to the webhook
		// source; it retries on non-2xx and retries are out of scope.
		_ = s.notifier.PackageShipped(r.Context(), evt)
		metrics.WebhookEventsTotal.WithLabelValues(evt.Type, "processed").Inc()
		writeText(w, http.StatusOK, "webhook 'package_shipped' processed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

// instrument records request count and duration per handler.
func instrument(name string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		handler(wrapped, r)

		metrics.HTTPRequestDuration.WithLabelValues(name, r.Method).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(name, r.Method, strconv.Itoa(wrapped.status)).Inc()
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
