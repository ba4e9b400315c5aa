package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"beecok/internal/model"
)

// UploadDocument sends content as the multipart "file" field. progress, when non-nil,
// receives the bytes written so far; it restarts from zero if the request is retried.
func (c *Client) UploadDocument(ctx context.Context, spaceID, filename string, content io.Reader, size int64, progress func(sent, total int64)) (*model.UploadReceipt, error) {
	if err := ValidateUpload(filename, size); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(part, io.LimitReader(content, model.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := ValidateUpload(filename, n); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req := request{
		method:      http.MethodPost,
		path:        "/spaces/" + url.PathEscape(spaceID) + "/upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		auth:        true,
		progress:    progress,
	}
	var res struct {
		Document model.UploadReceipt `json:"document"`
	}
	if err := c.send(ctx, req, &res); err != nil {
		return nil, err
	}
	return &res.Document, nil
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
