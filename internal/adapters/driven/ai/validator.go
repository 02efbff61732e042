package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before the settings service
// saves them, by building the adapter and pinging it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that waits pingTimeout per check.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// ValidateEmbedding pings the embedding provider described by config.
// A nil config has nothing to check.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return nil
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	if err := ping(svc, v.timeout); err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLM pings the LLM provider described by config.
// A nil config has nothing to check.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil {
		return nil
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	if err := ping(svc, v.timeout); err != nil {
		return err
	}
	return svc.Close()
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping closes svc when it does not answer in time.
func ping(svc pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return err
	}
	return nil
}
