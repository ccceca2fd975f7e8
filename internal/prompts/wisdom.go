// Package prompts implements MCP prompt handlers for the prose engine.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// WisdomPrompt handles the snerge-wisdom MCP prompt.
// It asks the AI to fetch a quote on a topic and present it as is.
type WisdomPrompt struct{}

// NewWisdomPrompt creates a WisdomPrompt.
func NewWisdomPrompt() *WisdomPrompt {
	return &WisdomPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *WisdomPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("snerge-wisdom",
		mcp.WithPromptDescription(
			"Ask for a generated quote, optionally starting from a topic. "+
				"The quote is shown verbatim together with the training quotes its words came from.",
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("A few words to start the quote with"),
		),
		mcp.WithArgument("owo",
			mcp.ArgumentDescription("Set to 'true' for the ~UωU~ register"),
		),
	)
}

// Handle processes the snerge-wisdom prompt request.
func (p *WisdomPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var topic string
	owo := false
	if args := req.Params.Arguments; args != nil {
		topic = strings.TrimSpace(args["topic"])
		owo = strings.EqualFold(strings.TrimSpace(args["owo"]), "true")
	}

	call := "Run `snerge_quote`"
	description := "A word of wisdom"
	if topic != "" {
		call += fmt.Sprintf(" with prompt=%q", topic)
		description = fmt.Sprintf("A word of wisdom about %s", topic)
	}
	if owo {
		call += " and owo=true"
	}

	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I'd like a word of wisdom.\n\n" +
						"Please:\n" +
						"1. " + call + "\n" +
						"2. Show me the quote exactly as returned, in a block quote, without rewording it\n" +
						"3. Pick two or three of its rarer words and run `snerge_whence` on them\n" +
						"4. List the training quotes those words came from, with their ids",
				),
			},
		},
	}, nil
}
