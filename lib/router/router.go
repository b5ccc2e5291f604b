package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-i2p/go-onion/lib/circuit"
	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/inbox"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/go-i2p/go-onion/lib/sender"
	"github.com/go-i2p/go-onion/lib/transport"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Role selects which services a node runs.
type Role string

const (
	RoleDirectory Role = "directory"
	RoleRelay     Role = "relay"
	RoleUser      Role = "user"
)

// Option adjusts a Router before it is assembled.
type Option func(*Router)

// WithListenAddress overrides the address derived from the configuration.
func WithListenAddress(addr string) Option {
	return func(r *Router) { r.listenAddr = addr }
}

// WithResolver overrides how next hops and recipients are resolved.
func WithResolver(res transport.Resolver) Option {
	return func(r *Router) { r.resolver = res }
}

// Router is one running node.
type Router struct {
	cfg        *config.NodeConfig
	role       Role
	id         int
	listenAddr string
	resolver   transport.Resolver

	metrics   *metrics.Metrics
	client    *transport.Client
	keystore  *keys.RelayKeystore
	directory *directory.Directory
	processor *relay.Processor
	sender    *sender.Sender
	inbox     *inbox.Inbox
	server    *transport.Server

	// close channel
	closeChnl chan struct{}
	closeOnce sync.Once
	// running flag and mutex for thread-safe access
	running bool
	closed  bool
	runMux  sync.RWMutex
}

// CreateRouter assembles a node for role. id is ignored for RoleDirectory.
func CreateRouter(cfg *config.NodeConfig, role Role, id int, opts ...Option) (*Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("router: config cannot be nil")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if role != RoleDirectory && id < 0 {
		return nil, oops.Errorf("router: node id must be >= 0, got %d", id)
	}

	r := &Router{
		cfg:       cfg,
		role:      role,
		id:        id,
		resolver:  cfg.Addressing(),
		closeChnl: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.listenAddr == "" {
		r.listenAddr = r.defaultListenAddress()
	}
	if cfg.Metrics.Enabled {
		r.metrics = metrics.New()
	}

	if err := r.assemble(); err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"at":      "CreateRouter",
		"role":    role,
		"node_id": id,
		"address": r.listenAddr,
	}).Debug("router assembled")
	return r, nil
}

func (r *Router) defaultListenAddress() string {
	if r.role == RoleDirectory {
		return r.cfg.Directory.Address
	}
	return r.cfg.Addressing().NodeAddress(r.id)
}

// assemble wires the services of the role and the HTTP server that exposes them.
func (r *Router) assemble() error {
	client, err := transport.NewClient(r.resolver, r.cfg.Directory.Address, r.cfg.Relay.ForwardTimeout)
	if err != nil {
		return err
	}
	r.client = client

	svc := transport.Services{Metrics: r.metrics}
	switch r.role {
	case RoleDirectory:
		r.directory = directory.New()
		svc.Directory = r.directory
	case RoleRelay:
		r.keystore = keys.NewRelayKeystore(r.cfg.Keys.RSABits)
		r.processor, err = relay.NewProcessor(r.keystore, client, client, r.metrics)
		if err != nil {
			return err
		}
		svc.Relay = r.processor
		svc.Keys = r.keystore
	case RoleUser:
		r.sender, err = sender.New(client, circuit.NewSelector(), r.cfg.Addressing(), client, r.cfg.Circuit.Length, r.metrics)
		if err != nil {
			return err
		}
		r.inbox = inbox.New(r.id, r.cfg.Inbox.Capacity)
		svc.Sender = r.sender
		svc.Inbox = r.inbox
	default:
		return oops.Errorf("router: unknown role %q", r.role)
	}

	r.server, err = transport.NewServer(transport.ServerConfig{
		Address:          r.listenAddr,
		ReadTimeout:      r.cfg.HTTP.ReadTimeout,
		WriteTimeout:     r.cfg.HTTP.WriteTimeout,
		IdleTimeout:      r.cfg.HTTP.IdleTimeout,
		ForwardRate:      r.cfg.Relay.ForwardRate,
		ForwardBurst:     r.cfg.Relay.ForwardBurst,
		ExposePrivateKey: r.cfg.Debug.ExposePrivateKey,
	}, svc)
	return err
}

// Start brings the node up. A relay generates its keys before it listens and
// registers only once it accepts traffic.
func (r *Router) Start() error {
	r.runMux.Lock()
	defer r.runMux.Unlock()

	if r.closed {
		return fmt.Errorf("router: already closed")
	}
	if r.running {
		log.WithFields(logger.Fields{
			"at":     "(Router) Start",
			"reason": "router is already running",
		}).Error("error starting router")
		return nil
	}

	if r.keystore != nil {
		if err := r.keystore.Generate(); err != nil {
			return oops.Wrapf(err, "generate relay keys")
		}
	}

	if err := r.server.Start(); err != nil {
		return err
	}

	if r.role == RoleRelay {
		if err := r.register(); err != nil {
			r.server.Stop()
			return err
		}
	}

	r.running = true
	log.WithFields(logger.Fields{
		"at":      "(Router) Start",
		"role":    r.role,
		"node_id": r.id,
		"address": r.server.Addr(),
	}).Info("node started")
	return nil
}

func (r *Router) register() error {
	pub, err := r.keystore.PublicKey()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Relay.ForwardTimeout)
	defer cancel()
	return r.client.Register(ctx, r.id, pub.Export())
}

// Stop shuts the HTTP server down gracefully and releases Wait.
func (r *Router) Stop() {
	r.runMux.Lock()
	defer r.runMux.Unlock()

	if !r.running {
		log.Debug("router already stopped")
		return
	}
	r.running = false
	r.server.Stop()
	r.closeOnce.Do(func() { close(r.closeChnl) })
	log.WithField("role", r.role).Info("node stopped")
}

// Wait blocks until the router is stopped.
func (r *Router) Wait() {
	<-r.closeChnl
}

// Close stops the router if needed and erases key material. Safe to call
// more than once.
func (r *Router) Close() error {
	r.Stop()

	r.runMux.Lock()
	defer r.runMux.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.closeOnce.Do(func() { close(r.closeChnl) })
	if r.keystore != nil {
		r.keystore.Zero()
	}
	return nil
}

// Role returns the role the router was created with.
func (r *Router) Role() Role { return r.role }

// ID returns the node id.
func (r *Router) ID() int { return r.id }

// Addr returns the bound listen address, or "" before Start.
func (r *Router) Addr() string { return r.server.Addr() }

// Client returns the outbound client used by the node.
func (r *Router) Client() *transport.Client { return r.client }

// Directory returns the registry of a directory node, nil otherwise.
func (r *Router) Directory() *directory.Directory { return r.directory }

// Processor returns the relay processor of a relay node, nil otherwise.
func (r *Router) Processor() *relay.Processor { return r.processor }

// Keystore returns the keystore of a relay node, nil otherwise.
func (r *Router) Keystore() *keys.RelayKeystore { return r.keystore }

// Sender returns the sender of a user node, nil otherwise.
func (r *Router) Sender() *sender.Sender { return r.sender }

// Inbox returns the inbox of a user node, nil otherwise.
func (r *Router) Inbox() *inbox.Inbox { return r.inbox }
