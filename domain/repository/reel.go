package repository

import (
	"context"

	"shorts-autopost/domain/model"
)

// IVideoFetcher downloads a source video to local disk
type IVideoFetcher interface {
	Fetch(ctx context.Context, url, destination string) (int64, error)
}

// IUploadNotifier announces finished uploads
type IUploadNotifier interface {
	NotifyUpload(ctx context.Context, event *model.UploadEvent) error
}
