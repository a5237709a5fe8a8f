package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/users-service/internal/domain/event"
	"github.com/oksasatya/users-service/pkg/helpers"
)

// EventArchive stores raw event payloads in a GCS bucket.
type EventArchive struct {
	client *gcs.Client
	bucket string
}

func NewEventArchive(client *gcs.Client, bucket string) *EventArchive {
	return &EventArchive{client: client, bucket: bucket}
}

// ObjectPath is events/<type>/<version>/<userId>.json. Redeliveries overwrite
// the same object.
func ObjectPath(e event.UserCreated) string {
	return path.Join("events", e.EventType, e.EventVersion, e.UserID+".json")
}

// ArchiveUserCreated uploads the payload exactly as it was received.
func (a *EventArchive) ArchiveUserCreated(ctx context.Context, e event.UserCreated, raw []byte) (string, error) {
	url, err := helpers.UploadObject(ctx, a.client, a.bucket, ObjectPath(e), "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", e.UserID, err)
	}
	return url, nil
}
