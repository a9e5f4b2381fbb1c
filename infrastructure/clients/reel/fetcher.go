package reel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
)

// ChunkSize is the size of each read from the response body
const ChunkSize = 8 * 1024

// Fetcher downloads reels over plain HTTP GET
type Fetcher struct {
	client   *http.Client
	progress io.Writer
}

type Option func(*Fetcher)

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout bounds the whole download. Zero keeps the client's own limit.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			c := *f.client
			c.Timeout = timeout
			f.client = &c
		}
	}
}

// WithProgress renders a progress bar to w while downloading
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

func NewFetcher(opts ...Option) repository.IVideoFetcher {
	f := &Fetcher{client: &http.Client{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch streams url into destination, creating or truncating it. Only a 200
// response is accepted.
func (f *Fetcher) Fetch(ctx context.Context, url, destination string) (int64, error) {
	log := logger.GetLogger().WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, model.NewDownloadError("build request", 0, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, model.NewDownloadError("get reel", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, model.NewDownloadError("get reel", resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	out, err := os.Create(destination)
	if err != nil {
		return 0, model.NewDownloadError("create file", 0, err)
	}
	defer out.Close()

	var body io.Reader = resp.Body
	if f.progress != nil {
		total := resp.ContentLength
		if total < 0 {
			total = 0
		}
		bar := pb.New64(total).SetTemplate(pb.Full).Set(pb.Bytes, true).SetWriter(f.progress).Start()
		defer bar.Finish()
		body = bar.NewProxyReader(resp.Body)
	}

	written, err := copyChunks(out, body)
	if err != nil {
		return written, model.NewDownloadError("write file", 0, err)
	}
	if err := out.Close(); err != nil {
		return written, model.NewDownloadError("close file", 0, err)
	}

	log.WithFields(map[string]interface{}{
		"destination": destination,
		"size":        humanize.Bytes(uint64(written)),
	}).Info("Reel downloaded")
	return written, nil
}

func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
