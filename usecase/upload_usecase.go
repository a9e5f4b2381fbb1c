package usecase

import (
	"context"
	"errors"
	"os"
	"time"

	"shorts-autopost/domain/dto"
	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"
)

// IUploadUsecase posts the next queued short
type IUploadUsecase interface {
	// Run performs one pass: at most one row is uploaded.
	Run(ctx context.Context) (*model.RunResult, error)
	// Status summarizes the queue without changing anything.
	Status(ctx context.Context) (*model.QueueStatus, error)
}

// UploadUsecase drives a run from authentication to persisting the queue
type UploadUsecase struct {
	authenticator repository.IYouTubeAuthenticator
	queue         repository.IQueueStore
	fetcher       repository.IVideoFetcher
	notifier      repository.IUploadNotifier // optional
	config        model.RunConfig
	now           func() time.Time
}

func NewUploadUsecase(
	authenticator repository.IYouTubeAuthenticator,
	queue repository.IQueueStore,
	fetcher repository.IVideoFetcher,
	config model.RunConfig,
) *UploadUsecase {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &UploadUsecase{
		authenticator: authenticator,
		queue:         queue,
		fetcher:       fetcher,
		config:        config,
		now:           time.Now,
	}
}

// WithNotifier announces every successful upload (fluent)
func (u *UploadUsecase) WithNotifier(notifier repository.IUploadNotifier) *UploadUsecase {
	u.notifier = notifier
	return u
}

// WithClock replaces the wall clock (fluent)
func (u *UploadUsecase) WithClock(now func() time.Time) *UploadUsecase {
	u.now = now
	return u
}

func (u *UploadUsecase) Run(ctx context.Context) (*model.RunResult, error) {
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"spreadsheet": u.config.SheetName,
		"worksheet":   u.config.WorksheetName,
	})
	result := &model.RunResult{State: model.RunStateAuthenticating, DailyCap: u.config.DailyCap}

	youtube, err := u.authenticator.Authenticate(ctx)
	if err != nil {
		return u.abort(result, ensureKind(err, func(e error) error { return model.NewAuthenticationError("authenticate", e) }))
	}
	log.Info("Authenticated with YouTube")

	table, handle, err := u.queue.Load(ctx, u.config.SheetName, u.config.WorksheetName)
	if err != nil {
		return u.abort(result, ensureKind(err, func(e error) error { return model.NewQueueAccessError("load queue", e) }))
	}
	result.State = model.RunStateQueueLoaded

	rc := u.runContext(table)
	result.Date = rc.Date()
	result.PostedToday = rc.PostedToday
	result.Pending = u.pending(table)

	result.State = model.RunStateCapCheck
	log = log.WithFields(map[string]interface{}{
		"date":        result.Date,
		"postedToday": rc.PostedToday,
		"dailyCap":    u.config.DailyCap,
	})
	if rc.PostedToday >= u.config.DailyCap {
		result.CapReached = true
		result.State = model.RunStateDone
		log.Info("Daily limit reached, nothing to post")
		return result, nil
	}

	result.State = model.RunStateRowScan
	uploaded := -1
	for i, row := range table.Rows {
		if row.IsPosted(u.config.PostedMatch) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return u.abort(result, err)
		}

		sheetRow := handle.SheetRow(i)
		rowLog := log.WithFields(map[string]interface{}{"row": sheetRow, "caption": row.Caption()})

		video, err := u.post(ctx, youtube, row, result)
		if err != nil {
			var runErr *model.RunError
			if errors.As(err, &runErr) && runErr.Fatal() {
				return u.abort(result, err)
			}
			kind, _ := model.KindOf(err)
			result.Failures = append(result.Failures, model.RowAttempt{
				Row:     sheetRow,
				Caption: row.Caption(),
				Kind:    kind,
				Error:   err.Error(),
			})
			rowLog.WithField("error", err).Warn("Row failed, trying the next one")
			result.State = model.RunStateRowScan
			continue
		}

		uploadedAt := u.now().In(u.config.Location)
		table.MarkPosted(i, uploadedAt)
		result.State = model.RunStateRowUpdated
		result.UploadedRow = sheetRow
		result.VideoID = video.ID
		result.VideoURL = video.ShortsURL()
		result.UploadTime = table.Rows[i].UploadTime()
		result.PostedToday++
		result.Pending--
		uploaded = i
		rowLog.WithFields(map[string]interface{}{
			"videoId": video.ID,
			"url":     result.VideoURL,
		}).Info("Short posted")
		break
	}

	if uploaded < 0 {
		result.State = model.RunStateDone
		log.WithField("failures", len(result.Failures)).Info("No row was uploaded")
		return result, nil
	}

	result.State = model.RunStatePersisting
	if err := u.persist(ctx, table, uploaded, handle); err != nil {
		// the video is live; the next run may post it again
		result.SaveError = err.Error()
		log.WithFields(map[string]interface{}{
			"error":   err,
			"videoId": result.VideoID,
		}).Error("Uploaded but failed to update the queue")
	} else {
		result.Saved = true
	}

	u.notify(ctx, table, uploaded, result)

	result.State = model.RunStateDone
	return result, nil
}

// post downloads the reel of row and uploads it. The temporary file is
// removed whatever the outcome.
func (u *UploadUsecase) post(ctx context.Context, youtube repository.IYouTube, row model.QueueRow, result *model.RunResult) (*model.YouTubeVideo, error) {
	defer u.removeTempFile()

	if row.ReelURL() == "" {
		return nil, model.NewDownloadError("download reel", 0, errors.New("row has no Reel URL"))
	}

	result.State = model.RunStateDownloading
	if _, err := u.fetcher.Fetch(ctx, row.ReelURL(), u.config.TempFile); err != nil {
		return nil, ensureKind(err, func(e error) error { return model.NewDownloadError("download reel", 0, e) })
	}

	result.State = model.RunStateUploading
	video, err := youtube.UploadVideo(ctx, dto.NewShortUploadRequest(u.config.TempFile, row.Caption(), row.Hashtags()))
	if err != nil {
		return nil, ensureKind(err, func(e error) error { return model.NewUploadError("upload video", 0, e) })
	}
	if video == nil || video.ID == "" {
		return nil, model.NewUploadError("upload video", 0, errors.New("no video id returned"))
	}
	return video, nil
}

func (u *UploadUsecase) persist(ctx context.Context, table *model.QueueTable, index int, handle *model.QueueHandle) error {
	if u.config.WriteMode == model.WriteModeRow {
		return u.queue.SaveRow(ctx, table, index, handle)
	}
	return u.queue.Save(ctx, table, handle)
}

func (u *UploadUsecase) notify(ctx context.Context, table *model.QueueTable, index int, result *model.RunResult) {
	if u.notifier == nil {
		return
	}
	row := table.Rows[index]
	event := &model.UploadEvent{
		VideoID:    result.VideoID,
		URL:        result.VideoURL,
		Title:      row.Caption(),
		ReelURL:    row.ReelURL(),
		Row:        result.UploadedRow,
		UploadedAt: result.UploadTime,
		Saved:      result.Saved,
	}
	if err := u.notifier.NotifyUpload(ctx, event); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":   err,
			"videoId": result.VideoID,
		}).Warn("Failed to publish upload notification")
	}
}

func (u *UploadUsecase) Status(ctx context.Context) (*model.QueueStatus, error) {
	table, handle, err := u.queue.Load(ctx, u.config.SheetName, u.config.WorksheetName)
	if err != nil {
		return nil, ensureKind(err, func(e error) error { return model.NewQueueAccessError("load queue", e) })
	}
	rc := u.runContext(table)

	status := &model.QueueStatus{
		Date:        rc.Date(),
		PostedToday: rc.PostedToday,
		DailyCap:    u.config.DailyCap,
		Total:       len(table.Rows),
		Pending:     u.pending(table),
	}
	if remaining := u.config.DailyCap - rc.PostedToday; remaining > 0 {
		status.RemainingToday = remaining
	}
	for i, row := range table.Rows {
		if !row.IsPosted(u.config.PostedMatch) {
			status.NextCaption = row.Caption()
			status.NextRow = handle.SheetRow(i)
			break
		}
	}
	return status, nil
}

// runContext reads the clock once and counts the rows posted on that local
// date. Rows with an unparseable Upload Time are not counted.
func (u *UploadUsecase) runContext(table *model.QueueTable) model.RunContext {
	rc := model.RunContext{Now: u.now().In(u.config.Location)}
	for _, row := range table.Rows {
		if !row.IsPosted(u.config.PostedMatch) {
			continue
		}
		if at, ok := row.UploadedAt(u.config.Location); ok && rc.SameDay(at) {
			rc.PostedToday++
		}
	}
	return rc
}

func (u *UploadUsecase) pending(table *model.QueueTable) int {
	n := 0
	for _, row := range table.Rows {
		if !row.IsPosted(u.config.PostedMatch) {
			n++
		}
	}
	return n
}

func (u *UploadUsecase) removeTempFile() {
	if u.config.TempFile == "" {
		return
	}
	if err := os.Remove(u.config.TempFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"file":  u.config.TempFile,
		}).Warn("Failed to remove temporary file")
	}
}

func (u *UploadUsecase) abort(result *model.RunResult, err error) (*model.RunResult, error) {
	result.State = model.RunStateAborted
	result.Error = err.Error()
	logger.GetLogger().WithField("error", err).Error("Run aborted")
	return result, err
}

// ensureKind leaves typed run errors alone and wraps anything else
func ensureKind(err error, wrap func(error) error) error {
	if _, ok := model.KindOf(err); ok {
		return err
	}
	return wrap(err)
}
