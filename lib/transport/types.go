package transport

import (
	"time"

	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/inbox"
	"github.com/go-i2p/go-onion/lib/onion"
)

const (
	statusOK      = "ok"
	statusSuccess = "success"
	statusError   = "error"
)

// RegisterRequest is the body of POST /registerNode.
type RegisterRequest struct {
	NodeID *int   `json:"nodeId"`
	PubKey string `json:"pubKey"`
}

// RegistryResponse is the body of GET /getNodeRegistry.
type RegistryResponse struct {
	Nodes []directory.Node `json:"nodes"`
}

// SendRequest is the body of POST /sendMessage.
type SendRequest struct {
	Message           string `json:"message"`
	DestinationUserID *int   `json:"destinationUserId"`
}

// SendResponse is the body of a successful POST /sendMessage.
type SendResponse struct {
	Status  string `json:"status"`
	Circuit []int  `json:"circuit"`
}

// ForwardRequest is the body of POST /forwardMessage. Byte fields travel as
// standard base64.
type ForwardRequest = onion.Layer

// DeliverRequest is the body of POST /message.
type DeliverRequest struct {
	Message string `json:"message"`
}

// StatusResponse is the generic success body.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// LastSentResponse is the body of GET /lastSentMessage.
type LastSentResponse struct {
	Message           string    `json:"message"`
	DestinationUserID int       `json:"destinationUserId"`
	Error             string    `json:"error,omitempty"`
	SentAt            time.Time `json:"sentAt"`
}

// CircuitResponse is the body of GET /lastCircuit.
type CircuitResponse struct {
	Circuit []int `json:"circuit"`
}

// CiphertextResponse is the body of GET /lastReceivedCiphertext.
type CiphertextResponse struct {
	Ciphertext []byte `json:"ciphertext"`
}

// DecryptedResponse is the body of GET /lastDecryptedMessage.
type DecryptedResponse struct {
	Kind      onion.Kind `json:"kind,omitempty"`
	Plaintext []byte     `json:"plaintext"`
	Outcome   string     `json:"outcome"`
	Error     string     `json:"error,omitempty"`
}

// DestinationResponse is the body of GET /lastForwardDestination.
type DestinationResponse struct {
	Destination string `json:"destination"`
	Outcome     string `json:"outcome"`
}

// PublicKeyResponse is the body of GET /publicKey.
type PublicKeyResponse struct {
	PubKey      string `json:"pubKey"`
	Fingerprint string `json:"fingerprint"`
}

// PrivateKeyResponse is the body of GET /privateKey.
type PrivateKeyResponse struct {
	PrivateKey string `json:"privateKey"`
}

// InboxResponse is the body of GET /inbox.
type InboxResponse struct {
	RecipientID int             `json:"recipientId"`
	Messages    []inbox.Message `json:"messages"`
}
