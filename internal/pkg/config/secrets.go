// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Keys the phonedesk secret bundle may carry. The overlay copies whichever
// ones are present onto the loaded config; anything else stays env-driven.
const (
	SecretKeyDBPassword    = "DB_PASSWORD"
	SecretKeyRedisPassword = "REDIS_PASSWORD"
	SecretKeyOpenAIAPIKey  = "OPENAI_API_KEY"
	SecretKeyJWTSecret     = "JWT_SECRET"
	SecretKeyAWSSecretKey  = "AWS_SECRET_ACCESS_KEY"
)

const defaultSecretName = "phonedesk/backend"

// SecretsManager resolves sensitive values that must not live in plain env
// files in production.
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

// AWSSecretsManager reads the phonedesk secret bundle (a single JSON secret
// keyed by the names above) from AWS Secrets Manager, with a short-lived
// local cache so repeated lookups don't hit the API.
type AWSSecretsManager struct {
	client     *secretsmanager.Client
	secretName string
	logger     *slog.Logger

	cacheMu   sync.RWMutex
	cache     map[string]string
	lastFetch time.Time
	ttl       time.Duration
}

// NewAWSSecretsManager creates a Secrets Manager client for the given region.
// An empty secretName falls back to the phonedesk default bundle.
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	if secretName == "" {
		secretName = defaultSecretName
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSecretsManager{
		client:     secretsmanager.NewFromConfig(cfg),
		secretName: secretName,
		logger:     logger,
		cache:      make(map[string]string),
		ttl:        5 * time.Minute,
	}, nil
}

// GetSecret retrieves a single value from the bundle.
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	secrets, err := sm.GetSecrets(ctx, []string{key})
	if err != nil {
		return "", err
	}
	val, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found in %s", key, sm.secretName)
	}
	return val, nil
}

// GetSecrets retrieves the requested keys, refetching the bundle when the
// cache has expired.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	sm.cacheMu.RLock()
	fresh := time.Since(sm.lastFetch) < sm.ttl && len(sm.cache) > 0
	if fresh {
		found := make(map[string]string, len(keys))
		for _, key := range keys {
			if val, ok := sm.cache[key]; ok {
				found[key] = val
			}
		}
		sm.cacheMu.RUnlock()
		if len(found) == len(keys) {
			return found, nil
		}
	} else {
		sm.cacheMu.RUnlock()
	}

	sm.logger.Info("fetching secret bundle",
		slog.String("secret_name", sm.secretName))

	result, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}

	var bundle map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.cacheMu.Lock()
	sm.cache = bundle
	sm.lastFetch = time.Now()
	sm.cacheMu.Unlock()

	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := bundle[key]; ok {
			found[key] = val
		} else {
			sm.logger.Warn("secret key missing from bundle",
				slog.String("key", key))
		}
	}
	return found, nil
}

// ApplyOverlay copies known secret keys from the bundle onto the config.
// Missing keys are skipped so a partial bundle still works.
func (sm *AWSSecretsManager) ApplyOverlay(ctx context.Context, cfg *Config) error {
	secrets, err := sm.GetSecrets(ctx, []string{
		SecretKeyDBPassword,
		SecretKeyRedisPassword,
		SecretKeyOpenAIAPIKey,
		SecretKeyJWTSecret,
		SecretKeyAWSSecretKey,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch secrets overlay: %w", err)
	}

	if v, ok := secrets[SecretKeyDBPassword]; ok {
		cfg.Database.Password = v
	}
	if v, ok := secrets[SecretKeyRedisPassword]; ok {
		cfg.Redis.Password = v
		cfg.Asynq.RedisPassword = v
	}
	if v, ok := secrets[SecretKeyOpenAIAPIKey]; ok {
		cfg.OpenAI.APIKey = v
	}
	if v, ok := secrets[SecretKeyJWTSecret]; ok {
		cfg.Security.JWTSecret = v
	}
	if v, ok := secrets[SecretKeyAWSSecretKey]; ok {
		cfg.AWS.SecretAccessKey = v
	}
	return nil
}

// EnvSecretsManager resolves secrets from environment variables. Used in
// development and by the worker for single-key lookups.
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates an environment-backed secrets manager.
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

// GetSecret reads one environment variable, failing when unset.
func (em *EnvSecretsManager) GetSecret(_ context.Context, key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("environment variable %s not set", key)
	}
	return val, nil
}

// GetSecrets reads multiple environment variables, skipping unset ones.
func (em *EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	secrets := make(map[string]string, len(keys))
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			secrets[key] = val
		}
	}
	return secrets, nil
}
