// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package bedrock

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/auth/bearer"

	"github.com/zentask/taskbridge/llm"
)

const DefaultMaxTokens = 8192

type Bedrock struct {
	client           *bedrockruntime.Client
	defaultModel     string
	inputTokenLimit  int
	outputTokenLimit int
	region           string
}

func New(llmService llm.ServiceConfig, httpClient *http.Client) (*Bedrock, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(llmService.Region),
		config.WithHTTPClient(httpClient),
	}

	// Authentication priority: IAM credentials > bearer token (API key) >
	// default credential chain.
	var clientOpts []func(*bedrockruntime.Options)

	if llmService.AWSAccessKeyID != "" && llmService.AWSSecretAccessKey != "" {
		// Static IAM credentials for standard AWS SigV4 signing
		configOpts = append(configOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					llmService.AWSAccessKeyID,
					llmService.AWSSecretAccessKey,
					"", // No session token for long-term credentials
				),
			),
		))
	} else if llmService.APIKey != "" {
		// Bedrock console API key (bearer token). Disable default credentials
		// to force bearer token authentication.
		configOpts = append(configOpts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))

		clientOpts = append(clientOpts, func(o *bedrockruntime.Options) {
			o.Credentials = aws.AnonymousCredentials{}

			o.BearerAuthTokenProvider = bearer.TokenProviderFunc(func(ctx context.Context) (bearer.Token, error) {
				return bearer.Token{Value: llmService.APIKey}, nil
			})

			o.AuthSchemePreference = []string{"httpBearerAuth"}
		})
	}
	// Otherwise the AWS SDK falls back to its default credential chain
	// (environment variables, IAM role, shared config).

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// A custom base endpoint supports proxies and VPC endpoints
	if llmService.APIURL != "" {
		clientOpts = append(clientOpts, func(o *bedrockruntime.Options) {
			o.BaseEndpoint = aws.String(llmService.APIURL)
		})
	}

	client := bedrockruntime.NewFromConfig(cfg, clientOpts...)

	return &Bedrock{
		client:           client,
		defaultModel:     llmService.DefaultModel,
		inputTokenLimit:  llmService.InputTokenLimit,
		outputTokenLimit: llmService.OutputTokenLimit,
		region:           llmService.Region,
	}, nil
}

// conversationToMessages creates system blocks and a slice of messages from
// conversation posts. Consecutive posts with the same role are merged, which
// the Converse API requires.
func conversationToMessages(posts []llm.Post) ([]types.SystemContentBlock, []types.Message) {
	var systemBlocks []types.SystemContentBlock
	messages := make([]types.Message, 0, len(posts))

	var currentBlocks []types.ContentBlock
	var currentRole types.ConversationRole

	flushCurrentMessage := func() {
		if len(currentBlocks) > 0 {
			messages = append(messages, types.Message{
				Role:    currentRole,
				Content: currentBlocks,
			})
			currentBlocks = nil
		}
	}

	for _, post := range posts {
		switch post.Role {
		case llm.PostRoleSystem:
			// System messages go in a separate array
			systemBlocks = append(systemBlocks, &types.SystemContentBlockMemberText{
				Value: post.Message,
			})
			continue
		case llm.PostRoleBot:
			if currentRole != types.ConversationRoleAssistant {
				flushCurrentMessage()
				currentRole = types.ConversationRoleAssistant
			}
		case llm.PostRoleUser:
			if currentRole != types.ConversationRoleUser {
				flushCurrentMessage()
				currentRole = types.ConversationRoleUser
			}
		default:
			continue
		}

		if post.Message != "" {
			currentBlocks = append(currentBlocks, &types.ContentBlockMemberText{
				Value: post.Message,
			})
		}
	}

	flushCurrentMessage()
	return systemBlocks, messages
}

func (b *Bedrock) GetDefaultConfig() llm.LanguageModelConfig {
	config := llm.LanguageModelConfig{
		Model: b.defaultModel,
	}
	if b.outputTokenLimit == 0 {
		config.MaxGeneratedTokens = DefaultMaxTokens
	} else {
		config.MaxGeneratedTokens = b.outputTokenLimit
	}
	return config
}

func (b *Bedrock) createConfig(opts []llm.LanguageModelOption) llm.LanguageModelConfig {
	cfg := b.GetDefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (b *Bedrock) ChatCompletion(request llm.CompletionRequest, opts ...llm.LanguageModelOption) (string, error) {
	cfg := b.createConfig(opts)

	system, messages := conversationToMessages(request.Posts)

	params := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(cfg.Model),
		Messages: messages,
	}

	// Only include system messages if non-empty
	if len(system) > 0 {
		params.System = system
	}

	// Check for overflow to avoid int -> int32 conversion issues
	maxTokens := cfg.MaxGeneratedTokens
	if maxTokens > 2147483647 { // math.MaxInt32
		return "", fmt.Errorf("max token value (%d) exceeds int32 maximum", maxTokens)
	}
	params.InferenceConfig = &types.InferenceConfiguration{
		MaxTokens: aws.Int32(int32(maxTokens)), //nolint:gosec // G115: Overflow checked above
	}

	if cfg.Temperature > 0 {
		params.InferenceConfig.Temperature = aws.Float32(cfg.Temperature)
	}

	out, err := b.client.Converse(context.Background(), params)
	if err != nil {
		return "", fmt.Errorf("error calling bedrock converse: %w", err)
	}

	message, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	var result strings.Builder
	for _, block := range message.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			result.WriteString(text.Value)
		}
	}

	return result.String(), nil
}

func (b *Bedrock) CountTokens(text string) int {
	// No local tokenizer is available, approximate the way the other
	// providers do.
	charCount := float64(len(text)) / 4.0
	wordCount := float64(len(strings.Fields(text))) / 0.75

	return int((charCount + wordCount) / 2.0)
}

func (b *Bedrock) InputTokenLimit() int {
	if b.inputTokenLimit > 0 {
		return b.inputTokenLimit
	}
	return 100000
}
