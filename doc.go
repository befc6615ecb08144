// Package statusauth is the SDK for mutually authenticated status checks.
//
// A client and a responder share a secret key per identity. The client signs
// a canonical request message with HMAC-SHA512 and the responder signs its
// answer the same way over a distinct canonical response message, so each
// side can detect a forged or tampered message from the other.
//
// # Overview of Packages
//
//   - statusauth - The main SDK package, configured with functional options
//   - status - The status service: the client call and the responder handler
//   - pkg/auth - Canonical messages, the MAC engine and request/response signing
//
// The canonical messages are
//
//	user_id|timestamp|/check_status
//	user_id|active|expires_at|server_time|/check_status_response
//
// where active is 1 or 0. No field may contain the '|' separator.
package statusauth
