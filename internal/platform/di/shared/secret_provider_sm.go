// internal/platform/di/shared/secret_provider_sm.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errSecretProviderNotConfigured = errors.New("shared: secret manager not configured")

// secretProviderSM reads a secret version from Secret Manager.
type secretProviderSM struct {
	sm        *secretmanager.Client
	projectID string
	version   string
}

func newSecretProvider(sm *secretmanager.Client, projectID string) *secretProviderSM {
	return &secretProviderSM{sm: sm, projectID: strings.TrimSpace(projectID), version: "latest"}
}

// Get accepts a bare secret id or a full "projects/.../secrets/..." name.
func (p *secretProviderSM) Get(ctx context.Context, secret string) (string, error) {
	if p == nil || p.sm == nil {
		return "", errSecretProviderNotConfigured
	}
	name, err := p.versionName(secret)
	if err != nil {
		return "", err
	}
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("secretProviderSM: AccessSecretVersion failed (%s): %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secretProviderSM: empty payload (%s)", name)
	}
	v := strings.TrimSpace(string(resp.Payload.Data))
	if v == "" {
		return "", fmt.Errorf("secretProviderSM: empty secret (%s)", name)
	}
	return v, nil
}

func (p *secretProviderSM) versionName(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errors.New("secretProviderSM: secret id is empty")
	}
	if strings.HasPrefix(secret, "projects/") {
		if strings.Contains(secret, "/versions/") {
			return secret, nil
		}
		return secret + "/versions/" + p.version, nil
	}
	if p.projectID == "" {
		return "", errors.New("secretProviderSM: projectID is empty")
	}
	return "projects/" + p.projectID + "/secrets/" + secret + "/versions/" + p.version, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
