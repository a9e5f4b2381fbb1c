package model

import "time"

// WriteMode selects how an updated queue is persisted
type WriteMode string

const (
	// WriteModeOverwrite clears the worksheet and rewrites every row
	WriteModeOverwrite WriteMode = "overwrite"
	// WriteModeRow only rewrites the row that changed
	WriteModeRow WriteMode = "row"
)

// RunConfig is captured once per process and passed to the run use case.
// Nothing downstream reads the environment directly.
type RunConfig struct {
	SheetName     string
	WorksheetName string
	DailyCap      int
	Location      *time.Location
	TempFile      string
	PostedMatch   PostedMatch
	WriteMode     WriteMode
}

// RunState is a step of the run state machine
type RunState string

const (
	RunStateAuthenticating RunState = "authenticating"
	RunStateQueueLoaded    RunState = "queue_loaded"
	RunStateCapCheck       RunState = "cap_check"
	RunStateRowScan        RunState = "row_scan"
	RunStateDownloading    RunState = "downloading"
	RunStateUploading      RunState = "uploading"
	RunStateRowUpdated     RunState = "row_updated"
	RunStatePersisting     RunState = "persisting"
	RunStateDone           RunState = "done"
	RunStateAborted        RunState = "aborted"
)

// RunContext holds the local clock reading for a single run
type RunContext struct {
	Now         time.Time
	PostedToday int
}

// Date returns the local calendar date as YYYY-MM-DD
func (c RunContext) Date() string {
	return c.Now.Format("2006-01-02")
}

// SameDay reports whether t falls on the run's local date
func (c RunContext) SameDay(t time.Time) bool {
	y1, m1, d1 := c.Now.Date()
	y2, m2, d2 := t.In(c.Now.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// RowAttempt records one failed attempt during the row scan
type RowAttempt struct {
	Row     int       `json:"row"`
	Caption string    `json:"caption"`
	Kind    ErrorKind `json:"kind"`
	Error   string    `json:"error"`
}

// RunResult summarizes what a run did
type RunResult struct {
	State       RunState     `json:"state"`
	Date        string       `json:"date"`
	PostedToday int          `json:"posted_today"`
	DailyCap    int          `json:"daily_cap"`
	CapReached  bool         `json:"cap_reached"`
	Pending     int          `json:"pending"`
	UploadedRow int          `json:"uploaded_row"`
	VideoID     string       `json:"video_id,omitempty"`
	VideoURL    string       `json:"video_url,omitempty"`
	UploadTime  string       `json:"upload_time,omitempty"`
	Failures    []RowAttempt `json:"failures,omitempty"`
	Saved       bool         `json:"saved"`
	SaveError   string       `json:"save_error,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Uploaded reports whether a row was posted during the run
func (r *RunResult) Uploaded() bool {
	return r.VideoID != ""
}

// QueueStatus is a read-only summary of the queue
type QueueStatus struct {
	Date           string `json:"date"`
	PostedToday    int    `json:"posted_today"`
	DailyCap       int    `json:"daily_cap"`
	RemainingToday int    `json:"remaining_today"`
	Total          int    `json:"total"`
	Pending        int    `json:"pending"`
	NextCaption    string `json:"next_caption,omitempty"`
	NextRow        int    `json:"next_row"`
}

// UploadEvent is published after a row was uploaded
type UploadEvent struct {
	VideoID    string `json:"video_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	ReelURL    string `json:"reel_url"`
	Row        int    `json:"row"`
	UploadedAt string `json:"uploaded_at"`
	Saved      bool   `json:"saved"`
}
