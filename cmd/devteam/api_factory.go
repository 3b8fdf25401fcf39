package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/devteam/internal/api"
	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/flows"
)

// backendOptions maps the loaded config onto backend options.
func backendOptions(c *config.Config, key string) api.Options {
	return api.Options{
		Provider: string(c.Provider),
		Anthropic: api.ClientConfig{
			Model:          anthropic.Model(c.Anthropic.Model),
			APIKey:         key,
			UseAWSBedrock:  c.Anthropic.UseBedrock,
			AWSRegion:      c.Anthropic.AWSRegion,
			AWSProfile:     c.Anthropic.AWSProfile,
			RequestTimeout: c.Anthropic.RequestTimeout,
		},
		Gemini: api.GeminiConfig{
			APIKey:         key,
			Model:          c.Gemini.Model,
			RequestTimeout: c.Anthropic.RequestTimeout,
		},
	}
}

// createBackend creates the LLM backend selected by the config.
func createBackend(ctx context.Context, c *config.Config) (api.Backend, error) {
	key, _, err := config.GetAPIKey(c)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nSet the provider's API key in the environment or run:\n  devteam config %s.api_key <key>", err, c.Provider)
	}

	backend, err := api.New(ctx, backendOptions(c, key))
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return backend, nil
}

// createFlows wires the backend to the prompt flows.
func createFlows(ctx context.Context, c *config.Config) (*flows.Flows, api.Backend, error) {
	backend, err := createBackend(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	prompts := flows.DefaultPrompts()
	if c.Prompts.Path != "" {
		prompts, err = flows.LoadPrompts(c.Prompts.Path)
		if err != nil {
			return nil, nil, err
		}
	}
	return flows.New(backend, prompts), backend, nil
}
