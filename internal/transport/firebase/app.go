// Package firebase adapts Firebase Authentication and Cloud Firestore to the
// identity and membership lookups of the search service.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Config holds the Firebase project settings.
type Config struct {
	ProjectID       string
	CredentialsFile string
}

// NewApp initializes a Firebase app. Without a credentials file the
// application default credentials are used.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}
