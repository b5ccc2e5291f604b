// Package relay implements the per-hop processing of onion layers.
//
// A Processor holds no session across messages: every incoming Layer is
// peeled with the relay's private key and then either forwarded to the next
// hop (RELAY) or delivered to the final recipient (FINAL). There is no retry
// and no alternate path; a failed forward or delivery is returned to the
// caller, which answers its predecessor with a failure status.
//
// The last-received ciphertext, plaintext and forward target are kept as
// diagnostics. They are replaced as a whole snapshot on every step, so
// concurrent requests race benignly with last-write-wins.
package relay
