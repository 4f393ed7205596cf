package dm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
)

const systemPrompt = `You are an experienced Dungeons & Dragons dungeon master. ` +
	`Respond to the player's action and narrate its consequences. Ask for dice ` +
	`rolls when the outcome is uncertain. Keep every reply to 3-5 sentences and ` +
	`under 200 words.`

// maxHistoryTurns caps how much prior conversation is sent with each call.
const maxHistoryTurns = 10

// OpenAI generates replies through the chat completions API. It is only
// constructed when an API key is configured.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (o *OpenAI) Reply(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(o.systemInstruction(req.Character)),
	}

	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	for _, turn := range history {
		switch turn.Role {
		case "dm":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case "player":
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		MaxTokens:   openai.Int(300),
		Temperature: openai.Float(0.8),
	})
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (o *OpenAI) systemInstruction(ch *Character) string {
	if ch == nil || ch.Name == "" {
		return systemPrompt
	}
	return fmt.Sprintf("%s The player character is %s, a level %d %s %s.",
		systemPrompt, ch.Name, max(ch.Level, 1), ch.Race, ch.Class)
}
