package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShortUploadRequest(t *testing.T) {
	req := NewShortUploadRequest("temp.mp4", "Sunset", "#shorts  #travel\n#sea")

	assert.Equal(t, "temp.mp4", req.FilePath)
	assert.Equal(t, "Sunset", req.Title)
	assert.Equal(t, "#shorts  #travel\n#sea", req.Description)
	assert.Equal(t, []string{"#shorts", "#travel", "#sea"}, req.Tags)
	assert.Equal(t, "22", req.CategoryID)
	assert.Equal(t, "public", req.Privacy)
	assert.False(t, req.MadeForKids)

	assert.Empty(t, NewShortUploadRequest("temp.mp4", "No tags", "").Tags)
}
