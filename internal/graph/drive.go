package graph

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type createUploadSessionRequest struct {
	Item driveItemUploadProperties `json:"item"`
}

type driveItemUploadProperties struct {
	ConflictBehavior string `json:"@microsoft.graph.conflictBehavior"`
}

// UploadSession is a resumable upload target in the caller's drive.
type UploadSession struct {
	UploadURL          string `json:"uploadUrl"`
	ExpirationDateTime string `json:"expirationDateTime"`
}

// DriveItem is the stored file produced by an upload.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	WebURL string `json:"webUrl"`
}

type thumbnailPage struct {
	Value []ThumbnailSet `json:"value"`
}

// ThumbnailSet is one group of generated previews for a drive item.
type ThumbnailSet struct {
	Small  *Thumbnail `json:"small"`
	Medium *Thumbnail `json:"medium"`
	Large  *Thumbnail `json:"large"`
}

// Thumbnail is a single preview rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CreateUploadSession opens a resumable upload session rooted at the
// caller's drive. Name conflicts are resolved by renaming, never by
// overwriting.
func (c *Client) CreateUploadSession(ctx context.Context, token Token, fileName string) (UploadSession, error) {
	req := createUploadSessionRequest{
		Item: driveItemUploadProperties{ConflictBehavior: "rename"},
	}
	path := "/me/drive/root:/" + url.PathEscape(fileName) + ":/createUploadSession"
	var session UploadSession
	if err := c.postJSON(ctx, token, path, req, &session); err != nil {
		return UploadSession{}, fmt.Errorf("create upload session: %w", err)
	}
	return session, nil
}

// UploadBytes puts the full content into an upload session in a single
// byte-range request covering bytes 0..len-1. The session URL carries its
// own authorization, so no bearer header is attached.
func (c *Client) UploadBytes(ctx context.Context, uploadURL string, content []byte) (DriveItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return DriveItem{}, fmt.Errorf("create upload request: %w", err)
	}
	length := int64(len(content))
	req.ContentLength = length
	req.Header.Set("Content-Length", strconv.FormatInt(length, 10))
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", length-1, length))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DriveItem{}, fmt.Errorf("upload bytes: %w", err)
	}
	defer resp.Body.Close()

	var item DriveItem
	if err := decodeResponse(resp, &item); err != nil {
		return DriveItem{}, fmt.Errorf("upload bytes: %w", err)
	}
	return item, nil
}

// ListThumbnails fetches the generated previews of a drive item. Items
// without previews return an empty list.
func (c *Client) ListThumbnails(ctx context.Context, token Token, itemID string) ([]ThumbnailSet, error) {
	var page thumbnailPage
	if err := c.get(ctx, token, "/me/drive/items/"+itemID+"/thumbnails", &page); err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	return page.Value, nil
}
