package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mod-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Source opens the archive stream for a mod. size is -1 when unknown.
type Source interface {
	Open(ctx context.Context, modName string) (body io.ReadCloser, size int64, err error)
	// Location describes where modName is fetched from, for logs.
	Location(modName string) string
}

// HTTPSource fetches {BaseURL}/{modName}.zip over plain HTTP.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates an HTTP source. A nil client uses http.DefaultClient;
// per-attempt deadlines come from the context.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{BaseURL: baseURL, Client: client}
}

// Location returns the download URL for modName.
func (s *HTTPSource) Location(modName string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + url.PathEscape(modName) + ".zip"
}

// Open issues the GET request. Non-2xx answers are returned as *StatusError.
func (s *HTTPSource) Open(ctx context.Context, modName string) (io.ReadCloser, int64, error) {
	target := s.Location(modName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, 0, &StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp.Body, resp.ContentLength, nil
}

// ObjectSource fetches {Prefix}/{modName}.zip from an object-storage mirror.
type ObjectSource struct {
	Client storage.Client
	Bucket string
	Prefix string
}

// NewObjectSource creates a mirror source.
func NewObjectSource(client storage.Client, bucket, prefix string) *ObjectSource {
	return &ObjectSource{Client: client, Bucket: bucket, Prefix: prefix}
}

// Location returns the bucket/key of modName.
func (s *ObjectSource) Location(modName string) string {
	return s.Bucket + "/" + storage.ObjectKey(s.Prefix, modName)
}

// Open stats the object for its size and then streams it.
func (s *ObjectSource) Open(ctx context.Context, modName string) (io.ReadCloser, int64, error) {
	key := storage.ObjectKey(s.Prefix, modName)

	info, err := s.Client.StatObject(ctx, s.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s/%s: %w", s.Bucket, key, err)
	}

	body, err := s.Client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get %s/%s: %w", s.Bucket, key, err)
	}

	return body, info.Size, nil
}
