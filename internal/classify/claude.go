package classify

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudePrompt = `You gatekeep URLs before they are shown inside an embedded frame. Judge ONLY the URL text you are given; do not assume you can visit it. Respond with a JSON object:
{"status": "safe" | "unsafe", "confidence": 0-100, "reason": "brief explanation"}

Only respond with the JSON object, no other text.`

// Claude asks an Anthropic model for the same {status, confidence} answer
// the remote check service gives.
type Claude struct {
	client     anthropic.Client
	model      string
	configured bool
}

// NewClaude builds a Claude strategy. With an empty apiKey the client goes
// through AWS Bedrock using the default AWS credential chain.
func NewClaude(ctx context.Context, apiKey, model string) *Claude {
	c := &Claude{model: model}
	if apiKey != "" {
		c.client = anthropic.NewClient(option.WithAPIKey(apiKey))
		c.configured = true
		return c
	}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" || os.Getenv("AWS_PROFILE") != "" {
		c.client = anthropic.NewClient(bedrock.WithLoadDefaultConfig(ctx))
		c.configured = true
	}
	return c
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Check(ctx context.Context, rawURL string) *Result {
	if !c.configured {
		return ErrorResult("claude", "Anthropic credentials not configured")
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 200,
		System: []anthropic.TextBlockParam{
			{Text: defaultClaudePrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(rawURL)),
		},
	})
	elapsed := float64(time.Since(start).Milliseconds())

	if err != nil {
		res := ErrorResult("claude", fmt.Sprintf("Claude API error: %v", err))
		res.ResponseTimeMs = elapsed
		return res
	}
	if len(message.Content) == 0 {
		res := ErrorResult("claude", "empty Claude response")
		res.ResponseTimeMs = elapsed
		return res
	}

	res := parseWireResult([]byte(strings.TrimSpace(message.Content[0].Text)))
	res.Strategy = "claude"
	res.ResponseTimeMs = elapsed
	return res
}
