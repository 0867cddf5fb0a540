package metrics

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TwitchConnectionCount      = expvar.NewInt("twitch_connection_count")
	TwitchMessageRecievedCount = expvar.NewInt("twitch_message_recieved_count")
	TwitchMessageSentCount     = expvar.NewInt("twitch_message_sent_count")
	TwitchMessageSendFailCount = expvar.NewInt("twitch_message_send_fail_count")
	TwitchMessageDroppedCount  = expvar.NewInt("twitch_message_dropped_count")

	TriviaRequestCount       = expvar.NewInt("trivia_request_count")
	TriviaLookupFailCount    = expvar.NewInt("trivia_lookup_fail_count")
	TriviaAnswerNotFound     = expvar.NewInt("trivia_answer_not_found")
	TriviaIgnoredSenderCount = expvar.NewInt("trivia_ignored_sender_count")

	ConfirmationPromptCount    = expvar.NewInt("confirmation_prompt_count")
	ConfirmationCancelledCount = expvar.NewInt("confirmation_cancelled_count")
	ConfirmationAcceptedCount  = expvar.NewInt("confirmation_accepted_count")
	ConfirmationDeclinedCount  = expvar.NewInt("confirmation_declined_count")

	TriviaLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_lookup_duration_seconds",
			Help:    "Duration of trivia API lookups in seconds by outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

var expvarDescs = map[string]*prometheus.Desc{
	"twitch_connection_count":        prometheus.NewDesc("twitch_connection_count", "number of times twitch connection was established", nil, nil),
	"twitch_message_recieved_count":  prometheus.NewDesc("twitch_message_recieved_count", "number of times twitch recieved a message", nil, nil),
	"twitch_message_sent_count":      prometheus.NewDesc("twitch_message_sent_count", "number of times twitch sent a message", nil, nil),
	"twitch_message_send_fail_count": prometheus.NewDesc("twitch_message_send_fail_count", "number of answers that could not be sent", nil, nil),
	"twitch_message_dropped_count":   prometheus.NewDesc("twitch_message_dropped_count", "number of messages dropped because the queue was full", nil, nil),
	"trivia_request_count":           prometheus.NewDesc("trivia_request_count", "number of parsed trivia requests", nil, nil),
	"trivia_lookup_fail_count":       prometheus.NewDesc("trivia_lookup_fail_count", "number of failed trivia API lookups", nil, nil),
	"trivia_answer_not_found":        prometheus.NewDesc("trivia_answer_not_found", "number of trivia questions without a matching record", nil, nil),
	"trivia_ignored_sender_count":    prometheus.NewDesc("trivia_ignored_sender_count", "number of chat messages not sent by the trivia bot", nil, nil),
	"confirmation_prompt_count":      prometheus.NewDesc("confirmation_prompt_count", "number of confirmation prompts shown to the operator", nil, nil),
	"confirmation_cancelled_count":   prometheus.NewDesc("confirmation_cancelled_count", "number of prompts replaced by a newer one", nil, nil),
	"confirmation_accepted_count":    prometheus.NewDesc("confirmation_accepted_count", "number of prompts answered yes", nil, nil),
	"confirmation_declined_count":    prometheus.NewDesc("confirmation_declined_count", "number of prompts answered with anything else", nil, nil),
}

// Server serves /metrics, /healthz and pprof.
type Server struct {
	*http.Server
	mux *http.ServeMux
}

// SetupServer builds the metrics server for addr, defaulting to :6060.
func SetupServer(addr string) *Server {
	if addr == "" {
		addr = ":6060"
	}

	mux := http.NewServeMux()
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(expvarDescs),
		TriviaLookupDuration,
	)

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return &Server{Server: server, mux: mux}
}

// RegisterAuthHealthHandler registers the auth health check endpoint
func (s *Server) RegisterAuthHealthHandler(handler http.HandlerFunc) {
	s.mux.HandleFunc("/healthz/auth", handler)
}

// Routes exposes the server's routes.
func (s *Server) Routes() http.Handler {
	return s.mux
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	err := s.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
