package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"shorts-autopost/domain/dto"
	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"

	"github.com/dustin/go-humanize"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client represents YouTube API client
type Client struct {
	service   *youtube.Service
	chunkSize int
}

// NewYouTubeClient creates a YouTube client authorized by tokenSource
func NewYouTubeClient(ctx context.Context, tokenSource oauth2.TokenSource, chunkSize int, opts ...option.ClientOption) (repository.IYouTube, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return NewYouTubeClientWithService(service, chunkSize), nil
}

// NewYouTubeClientWithService wraps an already configured service
func NewYouTubeClientWithService(service *youtube.Service, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = googleapi.DefaultUploadChunkSize
	}
	return &Client{service: service, chunkSize: chunkSize}
}

// UploadVideo uploads a video file to YouTube. Files larger than one chunk go
// through the resumable upload protocol, smaller ones in a single request.
func (c *Client) UploadVideo(ctx context.Context, req *dto.YouTubeVideoUploadRequest) (*model.YouTubeVideo, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, model.NewUploadError("open video file", 0, err)
	}
	defer file.Close()

	var size int64
	if fi, err := file.Stat(); err == nil {
		size = fi.Size()
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           req.Privacy,
			SelfDeclaredMadeForKids: req.MadeForKids,
			// false would be dropped by omitempty otherwise
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}

	log := logger.GetLogger().WithFields(map[string]interface{}{
		"title": req.Title,
		"size":  humanize.Bytes(uint64(size)),
	})
	log.Info("Uploading video to YouTube")

	call := c.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(file, googleapi.ContentType("video/*"), googleapi.ChunkSize(c.chunkSize)).
		ProgressUpdater(func(current, total int64) {
			log.WithField("sent", humanize.Bytes(uint64(current))).Debug("Upload progress")
		}).
		Context(ctx)

	started := time.Now()
	response, err := call.Do()
	if err != nil {
		// a rejected token refresh fails every later row too
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, model.NewAuthenticationError("refresh token", err)
		}
		return nil, model.NewUploadError("insert video", statusCode(err), err)
	}

	uploaded := convertToYouTubeVideo(response)
	log.WithFields(map[string]interface{}{
		"videoId":  uploaded.ID,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("Video uploaded")
	return &uploaded, nil
}

// convertToYouTubeVideo converts YouTube API video to our model
func convertToYouTubeVideo(video *youtube.Video) model.YouTubeVideo {
	ytVideo := model.YouTubeVideo{ID: video.Id}
	if video.Snippet != nil {
		ytVideo.PublishedAt, _ = time.Parse(time.RFC3339, video.Snippet.PublishedAt)
		ytVideo.Title = video.Snippet.Title
		ytVideo.Description = video.Snippet.Description
		ytVideo.ChannelID = video.Snippet.ChannelId
		ytVideo.Tags = video.Snippet.Tags
		ytVideo.Category = video.Snippet.CategoryId
	}
	if video.Status != nil {
		ytVideo.Status = video.Status.PrivacyStatus
		ytVideo.MadeForKids = video.Status.SelfDeclaredMadeForKids
	}
	return ytVideo
}

func statusCode(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
