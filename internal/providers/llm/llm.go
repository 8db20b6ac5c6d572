package llm

import "context"

type Provider interface {
	// Complete returns the model's full answer for one prompt. Failures carry
	// a utils.AppError code: UNAVAILABLE when the engine is unreachable,
	// TIMEOUT when the context deadline hit, PROTOCOL when the engine
	// answered with an unexpected payload. No provider retries internally.
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}
