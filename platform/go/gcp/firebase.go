package gcp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// GetApp creates a Firebase App instance. An empty credentials path falls back to Application
// Default Credentials.
func GetApp(ctx context.Context, credentialsFile string, projectID string) (*firebase.App, error) {
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	return firebase.NewApp(ctx, cfg, opts...)
}

// InitFirebaseAuth initializes the Firebase App and returns an Auth client. The client serves
// both ID token verification and the invite flow.
func InitFirebaseAuth(ctx context.Context, credentialsFile string, projectID string) (*firebase.App, *firebaseauth.Client, error) {
	firebaseApp, err := GetApp(ctx, credentialsFile, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase auth [%w]", err)
	}

	return firebaseApp, fbAuth, nil
}
