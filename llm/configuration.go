// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

const (
	ServiceTypeOpenAI           = "openai"
	ServiceTypeOpenAICompatible = "openaicompatible"
	ServiceTypeAzure            = "azure"
	ServiceTypeAnthropic        = "anthropic"
	ServiceTypeBedrock          = "bedrock"
)

// ServiceConfig describes one language model service. An empty Type means no
// service is configured and every model-backed stage runs its deterministic
// fallback instead.
type ServiceConfig struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	APIKey       string `json:"apiKey" yaml:"api_key"`
	OrgID        string `json:"orgId" yaml:"org_id"`
	DefaultModel string `json:"defaultModel" yaml:"default_model"`
	APIURL       string `json:"apiURL" yaml:"api_url"`

	InputTokenLimit  int `json:"inputTokenLimit" yaml:"input_token_limit"`
	OutputTokenLimit int `json:"outputTokenLimit" yaml:"output_token_limit"`

	// Bedrock only
	Region             string `json:"region" yaml:"region"`
	AWSAccessKeyID     string `json:"awsAccessKeyID" yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `json:"awsSecretAccessKey" yaml:"aws_secret_access_key"`
}

// IsConfigured reports whether any service is configured at all.
func (c ServiceConfig) IsConfigured() bool {
	return c.Type != ""
}

// BotConfig describes the bot identity and the service backing it.
type BotConfig struct {
	Name        string        `json:"name" yaml:"name"`
	DisplayName string        `json:"displayName" yaml:"display_name"`
	Locale      string        `json:"locale" yaml:"locale"`
	Service     ServiceConfig `json:"service" yaml:"service"`
}

func (c *BotConfig) IsValid() bool {
	return c.Name != ""
}

// IsValidService validates a service configuration
func IsValidService(service ServiceConfig) bool {
	if service.Type == "" {
		return false
	}

	// Service-specific validation
	switch service.Type {
	case ServiceTypeOpenAI:
		return service.APIKey != ""
	case ServiceTypeOpenAICompatible:
		return service.APIURL != ""
	case ServiceTypeAzure:
		return service.APIKey != "" && service.APIURL != ""
	case ServiceTypeAnthropic:
		return service.APIKey != ""
	case ServiceTypeBedrock:
		return service.Region != ""
	default:
		return false
	}
}
