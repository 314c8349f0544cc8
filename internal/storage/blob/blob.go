// Package blob keeps uploaded files in memory and hands out local URIs for them.
// It stands in for object storage: nothing survives a restart.
package blob

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itchan-dev/aurum/shared/domain"
	"github.com/itchan-dev/aurum/shared/errors"
	"github.com/itchan-dev/aurum/shared/logger"
	"github.com/itchan-dev/aurum/shared/validation"
)

const PathPrefix = "/blob/"

var ErrNotFound = errors.NotFound("Blob not found")

type Blob struct {
	Id        string
	Owner     string
	Name      string
	MimeType  string
	Size      int64
	Width     *int
	Height    *int
	CreatedAt time.Time
	Data      []byte
}

func (b *Blob) URI() string {
	return PathPrefix + b.Id
}

// Upload is the reference a message is built from.
func (b *Blob) Upload() domain.Upload {
	return domain.Upload{URL: b.URI(), MimeType: b.MimeType, Name: b.Name}
}

type Storage struct {
	mu      sync.RWMutex
	blobs   map[string]*Blob
	maxSize int64
}

func New(maxSize int64) *Storage {
	return &Storage{
		blobs:   make(map[string]*Blob),
		maxSize: maxSize,
	}
}

// Save reads the whole file, sniffs its type and keeps it under a fresh id.
// declaredType is only trusted when the content itself is inconclusive.
func (s *Storage) Save(owner, name, declaredType string, r io.Reader) (*Blob, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, errors.New(
			fmt.Sprintf("File is too large, max %.1f MB", validation.FormatSizeMB(s.maxSize)),
			http.StatusRequestEntityTooLarge,
		)
	}
	if len(data) == 0 {
		return nil, errors.BadRequest("File is empty")
	}

	mimeType := validation.DetectMimeType(data, declaredType, name)
	width, height := validation.ImageDimensions(data, mimeType)
	b := &Blob{
		Id:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Width:     width,
		Height:    height,
		CreatedAt: time.Now(),
		Data:      data,
	}

	s.mu.Lock()
	s.blobs[b.Id] = b
	s.mu.Unlock()

	logger.Log.Debug("blob saved", "blob_id", b.Id, "mime_type", mimeType, "size", b.Size)
	return b, nil
}

func (s *Storage) Open(id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// DeleteOwner drops every blob uploaded by owner and returns how many went.
func (s *Storage) DeleteOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, b := range s.blobs {
		if b.Owner == owner {
			delete(s.blobs, id)
			n++
		}
	}
	return n
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
