package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/clients/googlesheet"
	"shorts-autopost/infrastructure/clients/reel"
	youtubeclient "shorts-autopost/infrastructure/clients/youtube"
	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/filecsv"
	"shorts-autopost/infrastructure/logger"
	"shorts-autopost/infrastructure/pubsub"
	httpHandler "shorts-autopost/interfaces/http"
	"shorts-autopost/usecase"
)

const loopbackAddr = "127.0.0.1:0"

// application holds the components shared by the subcommands
type application struct {
	upload  *usecase.UploadUsecase
	cleanup []func()
}

func (a *application) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// newCredentialProvider builds the YouTube credential provider. consent is
// used only by the installed flow.
func newCredentialProvider(cfg *configuration.Config, consent youtubeclient.ConsentFunc) (*youtubeclient.CredentialProvider, error) {
	ytConfig, err := cfg.GetYouTubeConfig()
	if err != nil {
		return nil, err
	}
	return youtubeclient.NewCredentialProvider(youtubeclient.Config{
		ClientID:     ytConfig.ClientID,
		ClientSecret: ytConfig.ClientSecret,
		RefreshToken: ytConfig.RefreshToken,
		TokenFile:    ytConfig.TokenFile,
		TokenURI:     ytConfig.TokenURI,
		ChunkSize:    ytConfig.ChunkSize,
		Interactive:  ytConfig.Interactive,
	}, consent), nil
}

func newQueueStore(ctx context.Context, cfg *configuration.Config) (repository.IQueueStore, error) {
	if cfg.Queue.Source == configuration.SourceCSV {
		logger.GetLogger().WithField("file", cfg.Queue.CSVPath).Info("Using CSV queue")
		return filecsv.NewFile(cfg.Queue.CSVPath), nil
	}
	key, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, model.NewQueueAccessError("service account", err)
	}
	return googlesheet.NewGoogleSheet(ctx, key)
}

func newFetcher(cfg *configuration.Config, progress io.Writer) repository.IVideoFetcher {
	opts := []reel.Option{reel.WithTimeout(cfg.Download.Timeout)}
	if cfg.Download.ShowProgress && progress != nil {
		opts = append(opts, reel.WithProgress(progress))
	}
	return reel.NewFetcher(opts...)
}

// newApplication wires the upload use case from the loaded configuration.
// Errors of a known run kind mean the run could not start; anything else is a
// configuration problem.
func newApplication(ctx context.Context, cfg *configuration.Config, out io.Writer) (*application, error) {
	runConfig, err := cfg.RunConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Queue.Source != configuration.SourceGoogleSheet && cfg.Queue.Source != configuration.SourceCSV {
		return nil, fmt.Errorf("invalid queue source %q, expected googlesheet or csv", cfg.Queue.Source)
	}

	provider, err := newCredentialProvider(cfg, httpHandler.LoopbackConsent(loopbackAddr, out))
	if err != nil {
		return nil, err
	}

	store, err := newQueueStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &application{
		upload: usecase.NewUploadUsecase(provider, store, newFetcher(cfg, os.Stderr), runConfig),
	}

	if cfg.Pubsub.Topic != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.PubsubProject())
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - continuing without upload notifications")
		} else {
			app.upload.WithNotifier(pubsub.NewUploadPubSub(client, cfg.Pubsub.Topic))
			app.cleanup = append(app.cleanup, func() { _ = client.Close() })
		}
	}
	return app, nil
}
