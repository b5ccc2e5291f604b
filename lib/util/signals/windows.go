//go:build windows

package signals

import (
	"os"
	"os/signal"
)

func notify() {
	signal.Notify(sigChan, os.Interrupt)
}

func dispatch(sig os.Signal) {
	if sig == os.Interrupt {
		handleInterrupted()
	}
}
