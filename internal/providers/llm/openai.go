package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "llm.OpenAI.Complete"

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if isTimeout(err) {
			return "", utils.E(utils.CodeTimeout, op, "generation request timed out", err)
		}
		return "", utils.E(utils.CodeUnavailable, op, "cannot reach generation engine", err)
	}
	if len(resp.Choices) == 0 {
		return "", utils.E(utils.CodeProtocol, op, "generation response has no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
