package pump

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const DefaultIpfsURL = "https://pump.fun/api/ipfs"

// CreateTokenMetadata describes a token before it is uploaded.
type CreateTokenMetadata struct {
	Name        string
	Symbol      string
	Description string
	File        []byte
	FileName    string
	Twitter     string
	Telegram    string
	Website     string
}

type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ShowName    bool   `json:"showName"`
	CreatedOn   string `json:"createdOn"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
	Website     string `json:"website,omitempty"`
}

type UploadResult struct {
	Metadata    TokenMetadata `json:"metadata"`
	MetadataUri string        `json:"metadataUri"`
}

// MetadataUploader posts token metadata and image to the pump.fun IPFS endpoint.
type MetadataUploader struct {
	URL     string
	Timeout time.Duration

	client *fasthttp.Client
}

func NewMetadataUploader(url string, timeout time.Duration) *MetadataUploader {
	if url == "" {
		url = DefaultIpfsURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MetadataUploader{
		URL:     url,
		Timeout: timeout,
		client: &fasthttp.Client{
			Name:                "pump-launcher",
			MaxResponseBodySize: 1 << 20,
		},
	}
}

type uploadResponse struct {
	status int
	body   []byte
	err    error
}

// Upload posts meta and returns the stored metadata URI. The request is bounded by
// the earlier of the ctx deadline and u.Timeout, and gives up as soon as ctx is done.
func (u *MetadataUploader) Upload(ctx context.Context, meta CreateTokenMetadata) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "upload metadata")
	}
	body, contentType, err := buildMetadataForm(meta)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(u.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// the goroutine owns req and resp, so an abandoned upload never touches released buffers
	done := make(chan uploadResponse, 1)
	go func() {
		done <- u.post(body, contentType, deadline)
	}()

	var res uploadResponse
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "upload metadata")
	case res = <-done:
	}

	if res.err != nil {
		return nil, errors.Wrap(res.err, "upload metadata")
	}
	if res.status != fasthttp.StatusOK {
		return nil, errors.Errorf("upload metadata: status %d: %s", res.status, truncate(res.body, 256))
	}

	var out UploadResult
	if err := json.Unmarshal(res.body, &out); err != nil {
		return nil, errors.Wrap(err, "decode metadata response")
	}
	if out.MetadataUri == "" {
		return nil, errors.New("upload metadata: empty metadataUri")
	}
	return &out, nil
}

func (u *MetadataUploader) post(body []byte, contentType string, deadline time.Time) uploadResponse {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.Set("Accept", "application/json")
	req.SetBody(body)

	if err := u.client.DoDeadline(req, resp, deadline); err != nil {
		return uploadResponse{err: err}
	}
	return uploadResponse{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
	}
}

func buildMetadataForm(meta CreateTokenMetadata) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	name := meta.FileName
	if name == "" {
		name = "image.png"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filepath.Base(name)+`"`)
	h.Set("Content-Type", imageContentType(name))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", errors.WithStack(err)
	}
	if _, err := part.Write(meta.File); err != nil {
		return nil, "", errors.WithStack(err)
	}

	fields := [][2]string{
		{"name", meta.Name},
		{"symbol", meta.Symbol},
		{"description", meta.Description},
		{"twitter", meta.Twitter},
		{"telegram", meta.Telegram},
		{"website", meta.Website},
		{"showName", "true"},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", errors.WithStack(err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.WithStack(err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func imageContentType(name string) string {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
