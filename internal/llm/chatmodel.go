package llm

import (
	"context"

	"github.com/nlquery/orchestrator/graph/model"
)

// ChatModelGenerator adapts any graph/model.ChatModel (Anthropic, OpenAI,
// Google, or the mock) into the Generator interface the orchestrator's
// nodes depend on. This is the seam spec.md §1 keeps "an opaque generator"
// out of core scope: the core only ever sees Generator, while the
// embedding process picks which concrete ChatModel backs it.
type ChatModelGenerator struct {
	Model model.ChatModel
}

// NewChatModelGenerator wraps a ChatModel as a Generator.
func NewChatModelGenerator(m model.ChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{Model: m}
}

// Generate issues a single-turn chat completion. Req.SystemContext, when
// set, becomes the leading system message; Req.Prompt becomes the user
// message. MaxTokens/Temperature are accepted for interface symmetry with
// spec.md §6 but are provider-construction concerns for graph/model's
// clients, not per-call parameters.
func (g *ChatModelGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	var messages []model.Message
	if req.SystemContext != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: req.SystemContext})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: req.Prompt})

	out, err := g.Model.Chat(ctx, messages, nil)
	if err != nil {
		return Response{Success: false, Error: err.Error()}, err
	}
	return Response{Success: true, Content: out.Text}, nil
}
