package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/inbox"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/go-onion/lib/onion"
	"github.com/go-i2p/go-onion/lib/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServerConfig() ServerConfig {
	return ServerConfig{Address: "127.0.0.1:0"}
}

func newTestServer(t *testing.T, cfg ServerConfig, svc Services) *Server {
	t.Helper()
	s, err := NewServer(cfg, svc)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Error)
	return resp
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(ServerConfig{}, Services{})
	assert.Error(t, err)

	p, err := relay.NewProcessor(keys.NewRelayKeystore(rsa.MinKeyBits), &Client{}, &Client{}, nil)
	require.NoError(t, err)
	_, err = NewServer(testServerConfig(), Services{Relay: p})
	assert.Error(t, err, "relay without keystore")
}

func TestRoutesFollowServices(t *testing.T) {
	h := newTestServer(t, testServerConfig(), Services{Inbox: inbox.New(1, 4)}).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/inbox", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/getNodeRegistry", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/forwardMessage", "{}").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/message", nil).Code)
}

func TestRegisterAndList(t *testing.T) {
	m := metrics.New()
	dir := directory.New()
	h := newTestServer(t, testServerConfig(), Services{Directory: dir, Metrics: m}).Handler()

	pub, _, err := rsa.GenerateKeyPair(rsa.MinKeyBits)
	require.NoError(t, err)
	other, _, err := rsa.GenerateKeyPair(rsa.MinKeyBits)
	require.NoError(t, err)
	id := 1

	rec := do(t, h, http.MethodPost, "/registerNode", RegisterRequest{NodeID: &id, PubKey: pub.Export()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/registerNode", RegisterRequest{NodeID: &id, PubKey: pub.Export()})
	assert.Equal(t, http.StatusOK, rec.Code, "same key again is idempotent")

	rec = do(t, h, http.MethodPost, "/registerNode", RegisterRequest{NodeID: &id, PubKey: other.Export()})
	assert.Equal(t, http.StatusConflict, rec.Code)
	decodeError(t, rec)

	rec = do(t, h, http.MethodGet, "/getNodeRegistry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reg RegistryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, []directory.Node{{NodeID: 1, PublicKey: pub.Export()}}, reg.Nodes)

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rec.Body.String(), `goonion_registrations_total{outcome="existing"} 1`)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	h := newTestServer(t, testServerConfig(), Services{Directory: directory.New()}).Handler()
	neg, zero := -1, 0

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"not json", "{nodeId:", http.StatusBadRequest},
		{"missing id", RegisterRequest{PubKey: "abc"}, http.StatusBadRequest},
		{"missing key", RegisterRequest{NodeID: &zero}, http.StatusBadRequest},
		{"bad key", RegisterRequest{NodeID: &zero, PubKey: "bm90IGEga2V5"}, http.StatusBadRequest},
		{"negative id", RegisterRequest{NodeID: &neg, PubKey: "bm90IGEga2V5"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/registerNode", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			decodeError(t, rec)
		})
	}
}

type relayNode struct {
	keys    *keys.RelayKeystore
	handler http.Handler
}

func newRelayNode(t *testing.T, cfg ServerConfig, generate bool, fwd relay.Forwarder, dlv relay.Deliverer) relayNode {
	t.Helper()
	ks := keys.NewRelayKeystore(rsa.MinKeyBits)
	if generate {
		require.NoError(t, ks.Generate())
	}
	p, err := relay.NewProcessor(ks, fwd, dlv, nil)
	require.NoError(t, err)
	return relayNode{keys: ks, handler: newTestServer(t, cfg, Services{Relay: p, Keys: ks}).Handler()}
}

type nopDeliverer struct{ content string }

func (d *nopDeliverer) Deliver(_ context.Context, _ int, content string) error {
	d.content = content
	return nil
}

func exitLayer(t *testing.T, pub *rsa.RSAPublicKey, content string) *onion.Layer {
	t.Helper()
	b, err := onion.NewBuilder(addressing)
	require.NoError(t, err)
	l, err := b.Build(42, content, []onion.Hop{{NodeID: 1, PublicKey: pub}})
	require.NoError(t, err)
	return l
}

func TestForwardMessage(t *testing.T) {
	dlv := &nopDeliverer{}
	node := newRelayNode(t, testServerConfig(), true, &Client{}, dlv)
	pub, err := node.keys.PublicKey()
	require.NoError(t, err)

	rec := do(t, node.handler, http.MethodPost, "/forwardMessage", exitLayer(t, pub, "hi"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Equal(t, "hi", dlv.content)

	rec = do(t, node.handler, http.MethodGet, "/lastForwardDestination", nil)
	assert.JSONEq(t, `{"destination":"42","outcome":"delivered"}`, rec.Body.String())

	rec = do(t, node.handler, http.MethodGet, "/lastDecryptedMessage", nil)
	var dec DecryptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dec))
	assert.Equal(t, onion.KindFinal, dec.Kind)
	assert.NotEmpty(t, dec.Plaintext)
}

func TestForwardMessageErrors(t *testing.T) {
	stranger, _, err := rsa.GenerateKeyPair(rsa.MinKeyBits)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		node := newRelayNode(t, testServerConfig(), true, &Client{}, &nopDeliverer{})
		rec := do(t, node.handler, http.MethodPost, "/forwardMessage", exitLayer(t, stranger, "hi"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		decodeError(t, rec)

		rec = do(t, node.handler, http.MethodGet, "/lastDecryptedMessage", nil)
		assert.Contains(t, rec.Body.String(), `"outcome":"failed"`)
	})

	t.Run("keys not generated", func(t *testing.T) {
		node := newRelayNode(t, testServerConfig(), false, &Client{}, &nopDeliverer{})
		rec := do(t, node.handler, http.MethodPost, "/forwardMessage", exitLayer(t, stranger, "hi"))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = do(t, node.handler, http.MethodGet, "/publicKey", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		node := newRelayNode(t, testServerConfig(), true, &Client{}, &nopDeliverer{})
		rec := do(t, node.handler, http.MethodPost, "/forwardMessage", `{"kind":"SIDEWAYS","encryptedKey":"AA==","encryptedPayload":"AA=="}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, node.handler, http.MethodPost, "/forwardMessage", `not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestForwardRateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.ForwardRate = 0.001
	cfg.ForwardBurst = 1
	node := newRelayNode(t, cfg, true, &Client{}, &nopDeliverer{})

	first := do(t, node.handler, http.MethodPost, "/forwardMessage", "{}")
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := do(t, node.handler, http.MethodPost, "/forwardMessage", "{}")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	decodeError(t, second)
}

func TestKeyEndpoints(t *testing.T) {
	node := newRelayNode(t, testServerConfig(), true, &Client{}, &nopDeliverer{})
	rec := do(t, node.handler, http.MethodGet, "/publicKey", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pk PublicKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pk))
	pub, err := node.keys.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, pub.Export(), pk.PubKey)
	assert.Equal(t, keys.Fingerprint(pub), pk.Fingerprint)

	assert.Equal(t, http.StatusNotFound, do(t, node.handler, http.MethodGet, "/privateKey", nil).Code)

	cfg := testServerConfig()
	cfg.ExposePrivateKey = true
	debug := newRelayNode(t, cfg, true, &Client{}, &nopDeliverer{})
	rec = do(t, debug.handler, http.MethodGet, "/privateKey", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sk PrivateKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sk))
	priv, err := debug.keys.PrivateKey()
	require.NoError(t, err)
	assert.Equal(t, priv.Export(), sk.PrivateKey)
}

func TestDeliverAndInbox(t *testing.T) {
	m := metrics.New()
	box := inbox.New(42, 4)
	h := newTestServer(t, testServerConfig(), Services{Inbox: box, Metrics: m}).Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/lastReceivedMessage", nil).Code)

	rec := do(t, h, http.MethodPost, "/message", DeliverRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Message received"))

	rec = do(t, h, http.MethodGet, "/lastReceivedMessage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg inbox.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, 42, msg.RecipientID)
	assert.Equal(t, "hello", msg.Content)

	rec = do(t, h, http.MethodGet, "/inbox", nil)
	var list InboxResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 42, list.RecipientID)
	assert.Len(t, list.Messages, 1)
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t, testServerConfig(), Services{})
	require.NoError(t, s.Start())
	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.Stop()
	_, err = http.Get("http://" + addr + "/healthz")
	assert.Error(t, err)
}
