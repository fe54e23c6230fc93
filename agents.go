package main

import (
	"context"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/config"
	"github.com/muhammadolammi/interviewmate/internal/logger"
)

// newAnalysisService builds the summary service. streaming selects the
// token-streaming Gemini client; otherwise the ADK agent answers in one
// response. Without an API key the service reports itself disabled.
func newAnalysisService(ctx context.Context, cfg *config.Config, log *logger.Logger, streaming bool) (*analysis.Service, error) {
	opts := analysis.Options{IncludeResume: cfg.Gemini.IncludeResume}
	if cfg.Gemini.APIKey == "" {
		log.Warn("empty GOOGLE_API_KEY in environment, AI summaries are disabled")
		return analysis.NewService(nil, opts, log), nil
	}

	var req analysis.Requester
	if streaming {
		g, err := analysis.NewGeminiRequester(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		req = g
	} else {
		a, err := analysis.NewAgentRequester(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		req = a
	}
	return analysis.NewService(req, opts, log), nil
}
