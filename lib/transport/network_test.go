package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-i2p/go-onion/lib/config"
)

var addressing = config.Addressing{Host: "127.0.0.1", BasePort: 5000}

// testNetwork resolves node ids to httptest servers instead of base_port+id,
// and counts the requests each node receives.
type testNetwork struct {
	mu    sync.RWMutex
	addrs map[int]string
	hits  map[int]*int64
}

func newTestNetwork() *testNetwork {
	return &testNetwork{addrs: make(map[int]string), hits: make(map[int]*int64)}
}

func (n *testNetwork) HopAddress(hop string) (string, error) {
	port, err := config.ParseNextHop(hop)
	if err != nil {
		return "", err
	}
	return n.NodeAddress(port - addressing.BasePort), nil
}

func (n *testNetwork) NodeAddress(nodeID int) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if addr, ok := n.addrs[nodeID]; ok {
		return addr
	}
	// Nothing listens here.
	return "127.0.0.1:1"
}

// serve starts h as node id and returns its base URL.
func (n *testNetwork) serve(t *testing.T, id int, h http.Handler) string {
	t.Helper()
	var hits int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	n.mu.Lock()
	n.addrs[id] = strings.TrimPrefix(ts.URL, "http://")
	n.hits[id] = &hits
	n.mu.Unlock()
	return ts.URL
}

func (n *testNetwork) requests(id int) int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.hits[id]
	if !ok {
		panic(fmt.Sprintf("node %d is not served", id))
	}
	return atomic.LoadInt64(c)
}
