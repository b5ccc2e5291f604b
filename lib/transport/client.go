package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/onion"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// DefaultForwardTimeout bounds one outbound call when none is configured.
const DefaultForwardTimeout = 10 * time.Second

// Resolver turns next-hop strings and node ids into host:port addresses.
// config.Addressing is the production implementation.
type Resolver interface {
	HopAddress(hop string) (string, error)
	NodeAddress(nodeID int) string
}

// Client makes the outbound calls of a node: forwarding layers, delivering
// terminal messages and talking to the directory.
type Client struct {
	http      *http.Client
	resolver  Resolver
	directory string
	timeout   time.Duration
}

// NewClient creates a Client. directoryAddr is host:port or a full URL.
func NewClient(resolver Resolver, directoryAddr string, timeout time.Duration) (*Client, error) {
	if resolver == nil {
		return nil, fmt.Errorf("transport: resolver cannot be nil")
	}
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &Client{
		http:      &http.Client{},
		resolver:  resolver,
		directory: baseURL(directoryAddr),
		timeout:   timeout,
	}, nil
}

func baseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://" + addr
}

// Forward posts layer to the relay named by nextHop. Any failure, including a
// non-2xx answer, wraps relay.ErrForwarding.
func (c *Client) Forward(ctx context.Context, nextHop string, layer *onion.Layer) error {
	addr, err := c.resolver.HopAddress(nextHop)
	if err != nil {
		return oops.Errorf("%w: %w", relay.ErrForwarding, err)
	}
	if err := c.post(ctx, baseURL(addr)+"/forwardMessage", layer); err != nil {
		return oops.Errorf("%w: next hop %s: %w", relay.ErrForwarding, nextHop, err)
	}
	return nil
}

// Deliver posts content to the inbox of recipientID.
func (c *Client) Deliver(ctx context.Context, recipientID int, content string) error {
	url := baseURL(c.resolver.NodeAddress(recipientID)) + "/message"
	if err := c.post(ctx, url, DeliverRequest{Message: content}); err != nil {
		return oops.Errorf("%w: recipient %d: %w", relay.ErrForwarding, recipientID, err)
	}
	return nil
}

// Register announces a relay to the directory.
func (c *Client) Register(ctx context.Context, nodeID int, pubKey string) error {
	err := c.post(ctx, c.directory+"/registerNode", RegisterRequest{NodeID: &nodeID, PubKey: pubKey})
	if err != nil {
		return oops.With("node_id", nodeID).Wrapf(err, "register with directory")
	}
	log.WithFields(logger.Fields{
		"at":        "(Client) Register",
		"node_id":   nodeID,
		"directory": c.directory,
	}).Info("registered with directory")
	return nil
}

// ListNodes fetches the directory snapshot.
func (c *Client) ListNodes(ctx context.Context) ([]directory.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directory+"/getNodeRegistry", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.Wrapf(err, "fetch node registry")
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, oops.Wrapf(err, "fetch node registry")
	}
	var reg RegistryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&reg); err != nil {
		return nil, oops.Wrapf(err, "decode node registry")
	}
	return reg.Nodes, nil
}

// post sends one JSON request under the client timeout, with no retry.
func (c *Client) post(ctx context.Context, url string, body interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// checkStatus turns a non-2xx answer into an error carrying the remote
// error text. A 409 from the directory wraps directory.ErrConflictingKey.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	if resp.StatusCode == http.StatusConflict {
		return oops.Errorf("%w: %s", directory.ErrConflictingKey, msg)
	}
	return oops.Errorf("remote returned %d: %s", resp.StatusCode, msg)
}
