package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/infra/firestore"
	"github.com/m-mizutani/quill/pkg/infra/memory"
)

// Firestore holds the personal word store configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the Firestore personal word store; words stay in memory without it",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("QUILL_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("QUILL_FIRESTORE_DATABASE_ID"),
		},
	}
}

// Repository returns the configured word repository and a function that
// releases it
func (c *Firestore) Repository(ctx context.Context) (interfaces.WordRepository, func(), error) {
	if c.ProjectID == "" {
		return memory.NewWordRepository(), func() {}, nil
	}

	repo, err := firestore.New(ctx, c.ProjectID, c.DatabaseID)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}
