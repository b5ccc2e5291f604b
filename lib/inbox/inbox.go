// Package inbox stores messages delivered to a recipient node.
package inbox

import (
	"sync"
	"time"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Message is one delivered message.
type Message struct {
	RecipientID int       `json:"recipientId"`
	Content     string    `json:"message"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// Inbox is a bounded FIFO of delivered messages; when full, the oldest
// message is dropped. It is safe for concurrent use.
type Inbox struct {
	mu       sync.RWMutex
	owner    int
	capacity int
	messages []Message
	now      func() time.Time
}

// New creates an inbox for recipient owner holding at most capacity messages.
func New(owner, capacity int) *Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Inbox{owner: owner, capacity: capacity, now: time.Now}
}

// Owner returns the recipient id this inbox belongs to.
func (in *Inbox) Owner() int {
	return in.owner
}

// Deliver appends content and returns the stored message.
func (in *Inbox) Deliver(content string) Message {
	msg := Message{RecipientID: in.owner, Content: content, ReceivedAt: in.now()}

	in.mu.Lock()
	if len(in.messages) == in.capacity {
		in.messages = append(in.messages[:0], in.messages[1:]...)
	}
	in.messages = append(in.messages, msg)
	in.mu.Unlock()

	log.WithFields(logger.Fields{
		"at":           "(Inbox) Deliver",
		"recipient_id": in.owner,
		"length":       len(content),
	}).Debug("message delivered")
	return msg
}

// Last returns the most recent message.
func (in *Inbox) Last() (Message, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if len(in.messages) == 0 {
		return Message{}, false
	}
	return in.messages[len(in.messages)-1], true
}

// Messages returns a copy of the stored messages, oldest first.
func (in *Inbox) Messages() []Message {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]Message, len(in.messages))
	copy(out, in.messages)
	return out
}

// Len returns the number of stored messages.
func (in *Inbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.messages)
}
