// Package relay implements the in-memory HTTP relay that carries
// migration artifacts between the two parties when they share no
// filesystem. It stores announcements and sealed envelopes until the
// counterpart collects them.
//
// # HTTP API
//
//	POST /v1/box/{ext}?name=NAME
//	    Store one artifact of the given kind ("openbox" or "sealedbox").
//	    The body is the artifact's JSON document, treated as opaque
//	    bytes. NAME is optional; the server assigns one when absent.
//	    Responds 201 with {"name": ..., "seq": N}.
//
//	GET /v1/box/{ext}/next?after=SEQ&wait=DURATION
//	    Return the oldest artifact with a sequence number greater than
//	    SEQ (default 0). When none exists, the request blocks up to
//	    DURATION (a Go duration string, capped at one minute, default
//	    zero) and responds 204 if nothing arrives. A 200 response
//	    carries the artifact bytes plus X-Vaultferry-Name and
//	    X-Vaultferry-Seq headers.
//
//	GET /v1/box/{ext}/latest
//	    Return the newest stored artifact of the kind, or 404.
//
//	GET /healthz
//	    Liveness probe.
//
// # Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Unknown {ext} values respond 404.
//   - A lightweight access log records method, path, remote, status,
//     bytes and duration for each request.
//
// The relay is intended for local use or as an untrusted middleman on a
// private network. It never sees plaintext or private keys; it only
// stores announcements and ciphertext.
package relay
