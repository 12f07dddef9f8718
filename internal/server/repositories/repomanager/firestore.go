package repomanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/workshopreg/internal/server/config"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
	"google.golang.org/api/option"
)

type FirestoreRepositoryManager struct {
	client *firestore.Client
	users  *users.FirestoreRepository
}

// NewFirestoreRepositoryManager builds a client from a service-account JSON
// blob. An empty projectID is taken from the credentials.
func NewFirestoreRepositoryManager(ctx context.Context, projectID, credentialsJSON string) (*FirestoreRepositoryManager, error) {
	if credentialsJSON == "" {
		return nil, errors.New("firestore: service account credentials are required")
	}

	if projectID == "" {
		var err error
		projectID, err = projectIDFromCredentials(credentialsJSON)
		if err != nil {
			return nil, err
		}
	}

	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("firestore client error: %w", err)
	}

	return &FirestoreRepositoryManager{
		client: client,
		users:  users.NewFirestoreRepository(client, usersCollection),
	}, nil
}

func projectIDFromCredentials(credentialsJSON string) (string, error) {
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(credentialsJSON), &sa); err != nil {
		return "", fmt.Errorf("firestore: invalid service account json: %w", err)
	}
	if sa.ProjectID == "" {
		return "", errors.New("firestore: project id is missing")
	}
	return sa.ProjectID, nil
}

func (m *FirestoreRepositoryManager) Backend() string         { return config.StorageFirestore }
func (m *FirestoreRepositoryManager) Users() users.Repository { return m.users }

func (m *FirestoreRepositoryManager) Close(context.Context) error {
	return m.client.Close()
}
