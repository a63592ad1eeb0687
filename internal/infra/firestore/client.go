// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ClientWrapper owns the Firestore client of the process.
type ClientWrapper struct {
	Client    *firestore.Client
	ProjectID string
}

// NewClient connects to Firestore.
// An empty credentialsFile means Application Default Credentials.
func NewClient(ctx context.Context, projectID, credentialsFile string, log *zap.Logger) (*ClientWrapper, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore: project id is empty")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	if log != nil {
		log.Info("firestore connected", zap.String("project", projectID))
	}
	return &ClientWrapper{Client: client, ProjectID: projectID}, nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
