package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"resourcebank/internal/storage"
)

// KeyPrefix namespaces archived exports within the storage driver.
const KeyPrefix = "exports/"

// Artifact describes an archived export.
type Artifact struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size_bytes"`
	Records     int       `json:"records"`
	CreatedAt   time.Time `json:"created_at"`
}

// Archiver stores rendered exports under exports/<uuid>/banque_ressources.csv.
type Archiver struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

// NewArchiver returns an archiver writing to store.
func NewArchiver(store storage.Store) *Archiver {
	return &Archiver{store: store, now: time.Now, newID: uuid.NewString}
}

// Archive stores csv and returns the artifact description. records is the
// number of data rows and is recorded as metadata.
func (a *Archiver) Archive(ctx context.Context, csv string, records int) (Artifact, error) {
	if a == nil || a.store == nil {
		return Artifact{}, errors.New("export archiver not configured")
	}
	id := a.newID()
	key := path.Join(strings.TrimSuffix(KeyPrefix, "/"), id, Filename)
	created := a.now().UTC()
	info, err := a.store.Put(ctx, key, strings.NewReader(csv), storage.PutOptions{
		ContentType: ContentType,
		Metadata: map[string]string{
			"records": strconv.Itoa(records),
			"created": created.Format(time.RFC3339),
		},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("archive export: %w", err)
	}
	size := info.Size
	if size == 0 {
		size = int64(len(csv))
	}
	return Artifact{ID: id, Key: key, ContentType: ContentType, Size: size, Records: records, CreatedAt: created}, nil
}

// List returns the archived artifacts, ordered by key.
func (a *Archiver) List(ctx context.Context) ([]Artifact, error) {
	infos, err := a.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	out := make([]Artifact, 0, len(infos))
	for _, info := range infos {
		rest := strings.TrimPrefix(info.Key, KeyPrefix)
		id, _, ok := strings.Cut(rest, "/")
		if !ok {
			continue
		}
		art := Artifact{ID: id, Key: info.Key, ContentType: info.ContentType, Size: info.Size, CreatedAt: info.LastModified}
		if n, err := strconv.Atoi(info.Metadata["records"]); err == nil {
			art.Records = n
		}
		if ts, err := time.Parse(time.RFC3339, info.Metadata["created"]); err == nil {
			art.CreatedAt = ts
		}
		out = append(out, art)
	}
	return out, nil
}

// Open returns the archived CSV for id. An id that is not a UUID reports
// storage.ErrNotFound without touching the store.
func (a *Archiver) Open(ctx context.Context, id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("open export %q: %w", id, storage.ErrNotFound)
	}
	b, err := storage.ReadAll(ctx, a.store, path.Join(strings.TrimSuffix(KeyPrefix, "/"), id, Filename))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
