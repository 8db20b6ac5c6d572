package models

import "time"

// ConversationRecord is one persisted exchange: what the user said, what the
// tutor answered, and the synthesized reply file (nil when synthesis failed).
// Records are append-only; nothing in the system mutates or deletes them.
type ConversationRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Topic     string    `json:"topic"`
	UserText  string    `json:"user_text"`
	ReplyText string    `json:"reply_text"`
	TTSFile   *string   `json:"tts_file"`
}
