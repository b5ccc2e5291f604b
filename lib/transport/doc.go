// Package transport carries the onion network over HTTP.
//
// # Server
//
// A Server exposes the services a node runs. Routes are mounted only for the
// services that are present, so one type serves the directory, relay and user
// roles:
//
//	POST /registerNode           {nodeId, pubKey}              -> {status: "ok"}
//	GET  /getNodeRegistry                                      -> {nodes: [...]}
//	POST /sendMessage            {message, destinationUserId}  -> {status, circuit}
//	POST /forwardMessage         {kind, encryptedKey, encryptedPayload, nextHop?}
//	                                                           -> {status: "success"}
//	POST /message                {message}                     -> plain acknowledgment
//
// plus read-only diagnostic routes, /healthz and /metrics. Failures are
// answered with {status: "error", error: "..."} and a status code derived from
// the error's sentinel.
//
// # Client
//
// Client implements relay.Forwarder, relay.Deliverer and sender.NodeLister.
// Every outbound call is a single attempt bounded by the configured forward
// timeout; nothing is retried.
package transport
