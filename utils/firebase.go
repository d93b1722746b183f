package utils

import (
	"context"

	"ambulink/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Messaging client. Pushes stay disabled when no
// service account file is configured or initialisation fails.
func FirebaseInit(ctx context.Context) *messaging.Client {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		GetLogger().Info("firebase: no credentials configured, push notifications disabled")
		return nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		GetLogger().Error("firebase: error initializing app", zap.Error(err))
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		GetLogger().Error("firebase: error getting Messaging client", zap.Error(err))
		return nil
	}

	FCMClient = client
	return client
}
