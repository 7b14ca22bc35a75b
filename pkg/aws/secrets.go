package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsClient wraps AWS Secrets Manager lookups for shop credentials.
// Values are cached for the process lifetime; rotated secrets are picked up
// on restart.
type SecretsClient struct {
	client *secretsmanager.Client
	prefix string
	cache  map[string]string
	mu     sync.RWMutex
}

// NewSecretsClient creates a new Secrets Manager client. Secret names are
// resolved under SECRETS_PREFIX (default "cakeshop").
func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	prefix := os.Getenv("SECRETS_PREFIX")
	if prefix == "" {
		prefix = "cakeshop"
	}
	return &SecretsClient{
		client: secretsmanager.NewFromConfig(cfg),
		prefix: prefix,
		cache:  make(map[string]string),
	}
}

// GetSecret returns the string value of a named secret under the prefix.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("secrets client not configured")
	}
	id := s.prefix + "/" + name

	s.mu.RLock()
	if v, ok := s.cache[id]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &id})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	s.mu.Lock()
	s.cache[id] = *out.SecretString
	s.mu.Unlock()

	return *out.SecretString, nil
}

// GetSecretJSON fetches a secret whose value is a flat JSON object, the
// shape used for the database credentials bundle.
func (s *SecretsClient) GetSecretJSON(ctx context.Context, name string) (map[string]string, error) {
	raw, err := s.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("secret %s is not valid JSON: %w", s.prefix+"/"+name, err)
	}
	return values, nil
}
