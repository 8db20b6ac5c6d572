package services

import (
	"fmt"
	"os"
	"strings"
)

// DefaultTopic is used when the client sends no topic.
const DefaultTopic = "general conversation"

const defaultSystemPrompt = "You are a helpful German tutor. Respond in German."

// BuildPrompt assembles the generation prompt from the system instruction,
// the topic, and the transcript. No size capping; callers bound their inputs.
func BuildPrompt(systemPrompt, topic, transcript string) string {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return fmt.Sprintf("%s\n\nTopic: %s\nUser: %s\nTutor:", systemPrompt, topic, transcript)
}

// FallbackReply is the deterministic answer used when reply generation fails.
// It echoes the transcript so the user still sees they were understood.
func FallbackReply(transcript string) string {
	return fmt.Sprintf("I understood: '%s'. That's interesting! (generation service unavailable)", transcript)
}

// LoadSystemPrompt reads the instruction file, falling back to the built-in
// prompt when the file is missing or empty.
func LoadSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return defaultSystemPrompt
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return defaultSystemPrompt
	}
	return s
}
