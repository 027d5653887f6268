package ai

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/geocoder89/careercounsel/internal/config"
)

// New builds the provider named by AI_PROVIDER. awsConfig is only called
// for the bedrock provider.
func New(ctx context.Context, cfg config.Config, awsConfig func(context.Context) (aws.Config, error)) (Gateway, error) {
	switch cfg.AIProvider {
	case "groq", "":
		return NewGroq(ChatConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.GroqModel,
		})
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "bedrock":
		awsCfg, err := awsConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, cfg.BedrockMaxTokens), nil
	case "static":
		return Static{Text: "MATCHED: Communication | MISSING: Configure AI_PROVIDER"}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}
