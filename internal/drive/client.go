package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// downloadChunkSize controls progress reporting granularity.
const downloadChunkSize = 1 << 20

// FileRef identifies a live file in the remote store.
type FileRef struct {
	ID   string
	Name string
}

// Store is the remote file store surface the pipeline depends on. The Drive
// client implements it; tests substitute a stub.
type Store interface {
	// FindFile returns the first live (non-trashed) file with the exact
	// name inside the folder, or nil when none exists.
	FindFile(ctx context.Context, folderID, name string) (*FileRef, error)
	// Download reads the file's bytes into memory.
	Download(ctx context.Context, fileID string) ([]byte, error)
	// Upload creates a new file in the folder and returns its reference.
	Upload(ctx context.Context, folderID, name, mimeType string, content []byte) (*FileRef, error)
	// Update replaces the content of an existing file in place.
	Update(ctx context.Context, fileID, mimeType string, content []byte) error
}

// Client wraps the Google Drive v3 API.
type Client struct {
	svc *drive.Service
}

// NewClient builds a Drive client from a service account JSON key blob.
func NewClient(ctx context.Context, credentialsJSON string) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("build drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) FindFile(ctx context.Context, folderID, name string) (*FileRef, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", folderID, name)
	list, err := c.svc.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list files named %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	// Duplicate names are possible in Drive; take the first match.
	found := list.Files[0]
	return &FileRef{ID: found.Id, Name: found.Name}, nil
}

func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	chunk := make([]byte, downloadChunkSize)
	total := resp.ContentLength
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if total > 0 {
				log.Printf("[drive] download progress: %d%%", buf.Len()*100/int(total))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read file %s body: %w", fileID, readErr)
		}
	}
	return buf.Bytes(), nil
}

func (c *Client) Upload(ctx context.Context, folderID, name, mimeType string, content []byte) (*FileRef, error) {
	metadata := &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}
	created, err := c.svc.Files.Create(metadata).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("create file %s: %w", name, err)
	}
	if created == nil || created.Id == "" {
		return nil, errors.New("create file returned no id")
	}
	return &FileRef{ID: created.Id, Name: name}, nil
}

func (c *Client) Update(ctx context.Context, fileID, mimeType string, content []byte) error {
	_, err := c.svc.Files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update file %s: %w", fileID, err)
	}
	return nil
}
