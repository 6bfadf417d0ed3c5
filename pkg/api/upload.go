package api

import (
	"bytes"
	"context"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/joe/validate-sheets/pkg/errors"
)

// Upload sends the file as a multipart body under the field name "file" and
// returns the backend-assigned session. The content type comes from the
// multipart writer so the boundary is always correct; it is never set by
// hand.
//
// onProgress, when non-nil, is invoked synchronously with the percentage of
// bytes sent, rounded, monotonically non-decreasing. The transport may
// deliver large jumps; no smoothing is applied.
//
// The validation config is deliberately not part of the multipart body: the
// deployed backend reads it from the validate call instead, avoiding
// JSON-inside-multipart friction.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename string, onProgress func(percent int)) (*UploadResult, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.AsAppError(err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.AsAppError(err)
	}

	if err := writer.Close(); err != nil {
		return nil, errors.AsAppError(err)
	}

	body := newProgressReader(&buf, int64(buf.Len()), onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BasePath+"/upload", body)
	if err != nil {
		return nil, errors.AsAppError(err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = int64(buf.Len())

	var result UploadResult
	if err := c.send(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Download retrieves the finished artifact as raw bytes. The payload is
// binary and bypasses the envelope decode entirely.
func (c *Client) Download(ctx context.Context, sessionID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+BasePath+"/download/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, errors.AsAppError(err)
	}

	req.Header.Set("X-Request-ID", uuid.NewString())

	c.logRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return nil, errors.FromTransport(readErr)
		}

		return nil, errors.FromResponse(resp.StatusCode, raw)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.FromTransport(err)
	}

	return payload, nil
}

// progressReader counts bytes handed to the transport and reports them as a
// rounded percentage of the total.
type progressReader struct {
	inner      io.Reader
	total      int64
	sent       int64
	onProgress func(int)
}

func newProgressReader(inner io.Reader, total int64, onProgress func(int)) *progressReader {
	return &progressReader{inner: inner, total: total, onProgress: onProgress}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)

	if n > 0 && r.onProgress != nil && r.total > 0 {
		r.sent += int64(n)
		r.onProgress(int(math.Round(float64(r.sent) * 100 / float64(r.total))))
	}

	return n, err
}
