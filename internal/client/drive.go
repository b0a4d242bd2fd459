// Package client wraps the external collaborators: Google Drive, the AI
// analysis server, the takeoff database service and the company directory.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Drive performs the three storage steps of the upload chain: folder-or-create,
// multipart file upload, and the public-reader permission.
type Drive struct {
	svc        *drive.Service
	folderName string
}

// NewDrive builds a Drive client on top of hc, which must carry the user's
// bearer token (see auth.Transport). cfg.Endpoint overrides the API base URL
// for tests.
func NewDrive(ctx context.Context, hc *http.Client, cfg config.DriveConfig) (*Drive, error) {
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	folder := cfg.FolderName
	if folder == "" {
		folder = "AI-TakeOff"
	}
	return &Drive{svc: svc, folderName: folder}, nil
}

// EnsureFolder returns the id of the upload folder, creating it only when the
// search finds no match.
func (d *Drive) EnsureFolder(ctx context.Context) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s'", d.folderName, folderMimeType)
	list, err := d.svc.Files.List().Q(q).Spaces("drive").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search folder %q: %w", d.folderName, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	created, err := d.svc.Files.Create(&drive.File{
		Name:     d.folderName,
		MimeType: folderMimeType,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", d.folderName, err)
	}
	return created.Id, nil
}

// Upload stores the file inside the folder and returns the new file id.
func (d *Drive) Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{folderID},
	}
	created, err := d.svc.Files.Create(meta).
		Media(content, googleapi.ContentType(mimeType)).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	return created.Id, nil
}

// MakePublic grants anyone reader access so the analysis server can fetch
// the file without credentials.
func (d *Drive) MakePublic(ctx context.Context, fileID string) error {
	_, err := d.svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("make file %s public: %w", fileID, err)
	}
	return nil
}
