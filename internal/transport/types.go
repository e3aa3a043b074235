// Package transport holds chat-side types shared by outbound senders.
package transport

// ChatTarget addresses a chat, optionally a forum topic inside it.
type ChatTarget struct {
	ChatID   int64
	ThreadID int // forum topic thread id (0 if none)
}

// SendOptions tweaks how a chat message is delivered.
type SendOptions struct {
	ParseMode      string
	DisablePreview bool
	Silent         bool
}
