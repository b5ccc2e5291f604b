package transport

import (
	"fmt"
	"net/http"

	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/metrics"
	"github.com/go-i2p/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusOK})
}

// handleRegister serves POST /registerNode.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.services.Metrics.Registration(metrics.OutcomeRejected)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.NodeID == nil || req.PubKey == "" {
		s.services.Metrics.Registration(metrics.OutcomeRejected)
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: nodeId and pubKey are required", ErrBadRequest))
		return
	}

	created, err := s.services.Directory.Register(*req.NodeID, req.PubKey)
	if err != nil {
		s.services.Metrics.Registration(metrics.OutcomeRejected)
		writeError(w, statusFor(err), err)
		return
	}
	if created {
		s.services.Metrics.Registration(metrics.OutcomeCreated)
	} else {
		s.services.Metrics.Registration(metrics.OutcomeExisting)
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusOK})
}

// handleRegistry serves GET /getNodeRegistry.
func (s *Server) handleRegistry(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RegistryResponse{Nodes: s.services.Directory.ListNodes()})
}

// handleSend serves POST /sendMessage. Every send failure is a 500, as the
// caller has no way to act on the distinction.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.DestinationUserID == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: destinationUserId is required", ErrBadRequest))
		return
	}

	ids, err := s.services.Sender.Send(r.Context(), *req.DestinationUserID, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, SendResponse{Status: statusSuccess, Circuit: ids})
}

// handleForward serves POST /forwardMessage.
func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.services.Metrics.RateLimited()
		log.WithFields(logger.Fields{
			"at":     "(Server) handleForward",
			"reason": "rate_limited",
		}).Warn("forward request rejected")
		writeError(w, http.StatusTooManyRequests, fmt.Errorf("forward rate limit exceeded"))
		return
	}

	var layer ForwardRequest
	if err := decodeBody(w, r, &layer); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := s.services.Relay.ForwardMessage(r.Context(), &layer); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusSuccess})
}

// handleDeliver serves POST /message.
func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req DeliverRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	msg := s.services.Inbox.Deliver(req.Message)
	s.services.Metrics.InboxMessage()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Message received by user %d\n", msg.RecipientID)
}

func (s *Server) handleInbox(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, InboxResponse{
		RecipientID: s.services.Inbox.Owner(),
		Messages:    s.services.Inbox.Messages(),
	})
}

func (s *Server) handleLastReceived(w http.ResponseWriter, _ *http.Request) {
	msg, ok := s.services.Inbox.Last()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no message received yet"))
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleLastSent(w http.ResponseWriter, _ *http.Request) {
	last := s.services.Sender.Last()
	writeJSON(w, http.StatusOK, LastSentResponse{
		Message:           last.Message,
		DestinationUserID: last.RecipientID,
		Error:             last.Error,
		SentAt:            last.SentAt,
	})
}

func (s *Server) handleLastCircuit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CircuitResponse{Circuit: s.services.Sender.Last().Circuit})
}

func (s *Server) handleLastEncrypted(w http.ResponseWriter, _ *http.Request) {
	outer := s.services.Sender.Last().Outer
	if outer == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no message encrypted yet"))
		return
	}
	writeJSON(w, http.StatusOK, outer)
}

func (s *Server) handleLastCiphertext(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CiphertextResponse{Ciphertext: s.services.Relay.Last().ReceivedCiphertext})
}

func (s *Server) handleLastDecrypted(w http.ResponseWriter, _ *http.Request) {
	last := s.services.Relay.Last()
	writeJSON(w, http.StatusOK, DecryptedResponse{
		Kind:      last.Kind,
		Plaintext: last.ReceivedPlaintext,
		Outcome:   string(last.Outcome),
		Error:     last.Error,
	})
}

func (s *Server) handleLastDestination(w http.ResponseWriter, _ *http.Request) {
	last := s.services.Relay.Last()
	writeJSON(w, http.StatusOK, DestinationResponse{
		Destination: last.ForwardTarget,
		Outcome:     string(last.Outcome),
	})
}

func (s *Server) handlePublicKey(w http.ResponseWriter, _ *http.Request) {
	pub, err := s.services.Keys.PublicKey()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, PublicKeyResponse{
		PubKey:      pub.Export(),
		Fingerprint: keys.Fingerprint(pub),
	})
}

// handlePrivateKey is only mounted when debug.expose_private_key is set.
func (s *Server) handlePrivateKey(w http.ResponseWriter, _ *http.Request) {
	priv, err := s.services.Keys.PrivateKey()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	log.WithFields(logger.Fields{
		"at": "(Server) handlePrivateKey",
	}).Warn("private key exported over debug endpoint")
	writeJSON(w, http.StatusOK, PrivateKeyResponse{PrivateKey: priv.Export()})
}
