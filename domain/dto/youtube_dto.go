package dto

import "strings"

// Fixed upload metadata for queued shorts
const (
	ShortsCategoryID = "22"
	PrivacyPublic    = "public"
)

// YouTubeVideoUploadRequest represents request for video upload
type YouTubeVideoUploadRequest struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string // private, public, unlisted
	MadeForKids bool
}

// NewShortUploadRequest builds the upload request for a queue row. The
// hashtags are the description and, split on whitespace, the tag list.
func NewShortUploadRequest(filePath, title, hashtags string) *YouTubeVideoUploadRequest {
	return &YouTubeVideoUploadRequest{
		FilePath:    filePath,
		Title:       title,
		Description: hashtags,
		Tags:        strings.Fields(hashtags),
		CategoryID:  ShortsCategoryID,
		Privacy:     PrivacyPublic,
		MadeForKids: false,
	}
}

// Res is the generic error body of the HTTP API
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}
