// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotConfigIsValid(t *testing.T) {
	tests := []struct {
		name   string
		config BotConfig
		want   bool
	}{
		{
			name: "valid with name only",
			config: BotConfig{
				Name: "taskbridge",
			},
			want: true,
		},
		{
			name: "valid with full identity and service",
			config: BotConfig{
				Name:        "taskbridge",
				DisplayName: "TaskBridge",
				Locale:      "en",
				Service: ServiceConfig{
					Type:   ServiceTypeOpenAI,
					APIKey: "sk-xyz",
				},
			},
			want: true,
		},
		{
			name:   "missing name",
			config: BotConfig{DisplayName: "TaskBridge"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.IsValid())
		})
	}
}

func TestServiceConfigIsConfigured(t *testing.T) {
	assert.False(t, ServiceConfig{}.IsConfigured())
	assert.False(t, ServiceConfig{APIKey: "sk-xyz"}.IsConfigured())
	assert.True(t, ServiceConfig{Type: ServiceTypeOpenAI}.IsConfigured())
}

func TestIsValidService(t *testing.T) {
	tests := []struct {
		name    string
		service ServiceConfig
		want    bool
	}{
		{
			name: "Valid OpenAI service with all required fields",
			service: ServiceConfig{
				Type:   ServiceTypeOpenAI,
				APIKey: "sk-xyz",
			},
			want: true,
		},
		{
			name: "Valid OpenAI service with optional fields",
			service: ServiceConfig{
				Name:            "My OpenAI Service",
				Type:            ServiceTypeOpenAI,
				APIKey:          "sk-xyz",
				OrgID:           "org-xyz",
				DefaultModel:    "gpt-4o",
				InputTokenLimit: 100,
			},
			want: true,
		},
		{
			name: "OpenAI service missing API key",
			service: ServiceConfig{
				Type:   ServiceTypeOpenAI,
				APIKey: "", // bad
			},
			want: false,
		},
		{
			name: "Valid OpenAI Compatible service with API URL",
			service: ServiceConfig{
				Type:   ServiceTypeOpenAICompatible,
				APIURL: "http://localhost:8080",
			},
			want: true,
		},
		{
			name: "OpenAI Compatible service missing API URL",
			service: ServiceConfig{
				Type:   ServiceTypeOpenAICompatible,
				APIURL: "", // bad
			},
			want: false,
		},
		{
			name: "OpenAI Compatible service does not require API key",
			service: ServiceConfig{
				Type:   ServiceTypeOpenAICompatible,
				APIKey: "", // not required
				APIURL: "http://localhost:8080",
			},
			want: true,
		},
		{
			name: "Valid Azure service with API key and URL",
			service: ServiceConfig{
				Type:   ServiceTypeAzure,
				APIKey: "azure-key",
				APIURL: "https://myservice.openai.azure.com",
			},
			want: true,
		},
		{
			name: "Azure service missing API key",
			service: ServiceConfig{
				Type:   ServiceTypeAzure,
				APIKey: "", // bad
				APIURL: "https://myservice.openai.azure.com",
			},
			want: false,
		},
		{
			name: "Azure service missing API URL",
			service: ServiceConfig{
				Type:   ServiceTypeAzure,
				APIKey: "azure-key",
				APIURL: "", // bad
			},
			want: false,
		},
		{
			name: "Valid Anthropic service with API key",
			service: ServiceConfig{
				Type:   ServiceTypeAnthropic,
				APIKey: "sk-ant-xyz",
			},
			want: true,
		},
		{
			name: "Anthropic service missing API key",
			service: ServiceConfig{
				Type:   ServiceTypeAnthropic,
				APIKey: "", // bad
			},
			want: false,
		},
		{
			name: "Valid Bedrock service with region",
			service: ServiceConfig{
				Type:   ServiceTypeBedrock,
				Region: "us-east-1",
			},
			want: true,
		},
		{
			name: "Bedrock service missing region",
			service: ServiceConfig{
				Type:   ServiceTypeBedrock,
				Region: "", // bad
			},
			want: false,
		},
		{
			name: "Bedrock service with IAM credentials but no region",
			service: ServiceConfig{
				Type:               ServiceTypeBedrock,
				AWSAccessKeyID:     "AKIA123",
				AWSSecretAccessKey: "secret",
			},
			want: false,
		},
		{
			name:    "Empty type",
			service: ServiceConfig{APIKey: "sk-xyz"},
			want:    false,
		},
		{
			name: "Unknown type",
			service: ServiceConfig{
				Type:   "mystery",
				APIKey: "sk-xyz",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidService(tt.service))
		})
	}
}
