// Package signals dispatches process signals to registered handlers:
// SIGHUP to reload handlers, SIGINT and SIGTERM to interrupt handlers.
package signals

import (
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// sigChan is buffered to avoid missing signals delivered while no receiver is ready.
var sigChan = make(chan os.Signal, 1)

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID identifies a registered handler for deregistration.
type HandlerID int

type registeredHandler struct {
	id HandlerID
	fn Handler
}

var (
	mu           sync.RWMutex
	reloaders    []registeredHandler
	interrupters []registeredHandler
	nextID       HandlerID
	notifyOnce   sync.Once
	stopOnce     sync.Once
)

// RegisterReloadHandler registers a handler called on SIGHUP.
// Nil handlers are ignored and return -1.
func RegisterReloadHandler(f Handler) HandlerID {
	return register(&reloaders, f)
}

// RegisterInterruptHandler registers a handler called on SIGINT or SIGTERM.
// Nil handlers are ignored and return -1.
func RegisterInterruptHandler(f Handler) HandlerID {
	return register(&interrupters, f)
}

// DeregisterReloadHandler removes a reload handler.
func DeregisterReloadHandler(id HandlerID) {
	deregister(&reloaders, id)
}

// DeregisterInterruptHandler removes an interrupt handler.
func DeregisterInterruptHandler(id HandlerID) {
	deregister(&interrupters, id)
}

func register(list *[]registeredHandler, f Handler) HandlerID {
	if f == nil {
		return -1
	}
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	*list = append(*list, registeredHandler{id: id, fn: f})
	return id
}

func deregister(list *[]registeredHandler, id HandlerID) {
	mu.Lock()
	defer mu.Unlock()
	for i, h := range *list {
		if h.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// run calls a snapshot of list in registration order. A panicking handler
// does not stop the others.
func run(kind string, list *[]registeredHandler) {
	mu.RLock()
	snapshot := make([]registeredHandler, len(*list))
	copy(snapshot, *list)
	mu.RUnlock()

	for _, h := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(logger.Fields{
						"at":         "signals.run",
						"kind":       kind,
						"handler_id": h.id,
						"reason":     r,
					}).Error("signal handler panicked")
				}
			}()
			h.fn()
		}()
	}
}

func handleReload() {
	run("reload", &reloaders)
}

func handleInterrupted() {
	run("interrupt", &interrupters)
}

// Handle subscribes to the process signals and dispatches them until
// StopHandle is called. Run it in its own goroutine.
func Handle() {
	notifyOnce.Do(notify)
	for sig := range sigChan {
		log.WithField("signal", sig.String()).Debug("signal received")
		dispatch(sig)
	}
}

// StopHandle makes Handle return. Safe to call more than once.
func StopHandle() {
	stopOnce.Do(func() {
		signal.Stop(sigChan)
		close(sigChan)
	})
}
