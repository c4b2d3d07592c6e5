// Package http serves the sessions of a simflow Engine over a JSON API.
//
// Every session route runs under Engine.Do, so concurrent requests for the
// same session are serialized and each mutation is persisted before the
// response is written. State diffs are pushed to Server-Sent Events
// subscribers of /sessions/{id}/events.
package http
