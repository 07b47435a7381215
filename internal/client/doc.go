// Package client is the Go counterpart of the web client: it keeps a local
// identity, seals messages to a handle's encryption key, and walks the
// challenge flow to read an inbox.
package client
