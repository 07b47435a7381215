package message

import "time"

// CreatedAtLayout is the wire format of Message.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05Z"

// Message is an end-to-end encrypted note left for a handle. The service
// stores the ciphertext and its box parameters verbatim and never opens them.
type Message struct {
	ID           int64
	Handle       string
	Ciphertext   string
	Nonce        string
	EphemeralKey string
	Nickname     *string
	CreatedAt    time.Time
}

// PostInput is what a sender submits.
type PostInput struct {
	Handle       string
	Ciphertext   string
	Nonce        string
	EphemeralKey string
	Nickname     string
}
