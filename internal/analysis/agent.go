package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentName = "interview analyzer"

// AgentRequester runs prompts through an ADK agent. Every request gets its
// own agent session, deleted once the final response arrives.
type AgentRequester struct {
	runner   *runner.Runner
	sessions session.Service
	appName  string
}

func NewAgentRequester(ctx context.Context, apiKey, modelName string) (*AgentRequester, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	analyzer, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Analyze Interview",
		Instruction: agentInstruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}
	return &AgentRequester{runner: r, sessions: sessions, appName: analyzer.Name()}, nil
}

func (a *AgentRequester) Summarize(ctx context.Context, prompt string) (string, error) {
	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    "interviewmate",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	sess := created.Session
	defer func() {
		// a fresh context: the request one may already be cancelled
		_ = a.sessions.Delete(context.Background(), &session.DeleteRequest{
			AppName:   sess.AppName(),
			UserID:    sess.UserID(),
			SessionID: sess.ID(),
		})
	}()

	stream := a.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	return output, nil
}

// SummarizeStream delivers the agent's final response as a single chunk.
func (a *AgentRequester) SummarizeStream(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	out, err := a.Summarize(ctx, prompt)
	if err != nil {
		return "", err
	}
	if onChunk != nil && out != "" {
		onChunk(out)
	}
	return out, nil
}
