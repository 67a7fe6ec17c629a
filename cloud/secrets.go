package cloud

import (
	"fmt"
	"os"
	"strings"
)

// EnvSecretProvider resolves secrets from environment variables.
// Empty or whitespace-only values count as missing.
type EnvSecretProvider struct{}

// NewEnvSecretProvider creates an environment-backed secret provider.
func NewEnvSecretProvider() *EnvSecretProvider {
	return &EnvSecretProvider{}
}

// Get implements SecretProvider.
func (p *EnvSecretProvider) Get(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// Require implements SecretProvider.
func (p *EnvSecretProvider) Require(name string) (string, error) {
	v, ok := p.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: missing required secret %s", ErrSecretNotFound, name)
	}
	return v, nil
}

// StaticSecretProvider resolves secrets from a fixed map. For tests and
// embedded configuration.
type StaticSecretProvider struct {
	Values map[string]string
}

// Get implements SecretProvider.
func (p *StaticSecretProvider) Get(name string) (string, bool) {
	v, ok := p.Values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Require implements SecretProvider.
func (p *StaticSecretProvider) Require(name string) (string, error) {
	v, ok := p.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: missing required secret %s", ErrSecretNotFound, name)
	}
	return v, nil
}

// Verify both providers implement SecretProvider.
var (
	_ SecretProvider = (*EnvSecretProvider)(nil)
	_ SecretProvider = (*StaticSecretProvider)(nil)
)
