package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/inbox"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/go-i2p/go-onion/lib/sender"
	"github.com/go-i2p/logger"
	"golang.org/x/time/rate"
)

var log = logger.GetGoI2PLogger()

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// ServerConfig holds the listener settings of a Server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ForwardRate limits POST /forwardMessage in requests per second.
	// Zero or less disables the limiter.
	ForwardRate  float64
	ForwardBurst int

	ExposePrivateKey bool
}

// Services are the node components a Server exposes. Nil members have no routes.
type Services struct {
	Directory *directory.Directory
	Relay     *relay.Processor
	Keys      *keys.RelayKeystore
	Sender    *sender.Sender
	Inbox     *inbox.Inbox
	Metrics   *metrics.Metrics
}

// Server is the HTTP face of one node.
type Server struct {
	config     ServerConfig
	services   Services
	limiter    *rate.Limiter
	handler    http.Handler
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a Server for svc. It does not listen until Start.
func NewServer(cfg ServerConfig, svc Services) (*Server, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("transport: address cannot be empty")
	}
	if svc.Relay != nil && svc.Keys == nil {
		return nil, fmt.Errorf("transport: relay service requires its keystore")
	}

	limit := rate.Inf
	if cfg.ForwardRate > 0 {
		limit = rate.Limit(cfg.ForwardRate)
	}
	burst := cfg.ForwardBurst
	if burst < 1 {
		burst = 1
	}

	s := &Server{
		config:   cfg,
		services: svc,
		limiter:  rate.NewLimiter(limit, burst),
	}
	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// routes mounts one handler per exposed service.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.services.Directory != nil {
		mux.HandleFunc("POST /registerNode", s.handleRegister)
		mux.HandleFunc("GET /getNodeRegistry", s.handleRegistry)
	}
	if s.services.Sender != nil {
		mux.HandleFunc("POST /sendMessage", s.handleSend)
		mux.HandleFunc("GET /lastSentMessage", s.handleLastSent)
		mux.HandleFunc("GET /lastCircuit", s.handleLastCircuit)
		mux.HandleFunc("GET /lastEncryptedMessage", s.handleLastEncrypted)
	}
	if s.services.Relay != nil {
		mux.HandleFunc("POST /forwardMessage", s.handleForward)
		mux.HandleFunc("GET /lastReceivedCiphertext", s.handleLastCiphertext)
		mux.HandleFunc("GET /lastDecryptedMessage", s.handleLastDecrypted)
		mux.HandleFunc("GET /lastForwardDestination", s.handleLastDestination)
		mux.HandleFunc("GET /publicKey", s.handlePublicKey)
		if s.config.ExposePrivateKey {
			mux.HandleFunc("GET /privateKey", s.handlePrivateKey)
		}
	}
	if s.services.Inbox != nil {
		mux.HandleFunc("POST /message", s.handleDeliver)
		mux.HandleFunc("GET /inbox", s.handleInbox)
		mux.HandleFunc("GET /lastReceivedMessage", s.handleLastReceived)
	}
	if s.services.Metrics != nil {
		mux.Handle("GET /metrics", s.services.Metrics.Handler())
	}
	return mux
}

// Handler returns the route table, for serving without a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the configured address and serves in the background.
// Binding happens before Start returns, so a relay can register right after.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", s.config.Address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	log.WithFields(logger.Fields{
		"at":      "(Server) Start",
		"address": ln.Addr().String(),
	}).Info("starting node HTTP server")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.WithFields(logger.Fields{
				"at":     "(Server) Start",
				"reason": err.Error(),
			}).Error("node HTTP server error")
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server, waiting for active requests to complete.
func (s *Server) Stop() {
	log.WithFields(logger.Fields{
		"at": "(Server) Stop",
	}).Info("stopping node HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.WithFields(logger.Fields{
			"at":     "(Server) Stop",
			"reason": err.Error(),
		}).Error("error during server shutdown")
	}
	s.wg.Wait()
}

// decodeBody reads a JSON body of at most maxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFields(logger.Fields{
			"at":     "writeJSON",
			"reason": err.Error(),
		}).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Status: statusError, Error: err.Error()})
}
