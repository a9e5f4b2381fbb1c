package repository

import (
	"context"

	"shorts-autopost/domain/dto"
	"shorts-autopost/domain/model"
)

// IYouTube defines the YouTube operations a run needs
type IYouTube interface {
	UploadVideo(ctx context.Context, req *dto.YouTubeVideoUploadRequest) (*model.YouTubeVideo, error)
}

// IYouTubeAuthenticator produces an authorized YouTube handle
type IYouTubeAuthenticator interface {
	Authenticate(ctx context.Context) (IYouTube, error)
}
