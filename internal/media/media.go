// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media manages the media library: uploads into a storage
// backend, alt/caption edits, and soft or permanent deletes.
package media

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/authz"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/storage"
)

const (
	// DefaultMaxFileSize applies when no limit is configured.
	DefaultMaxFileSize = 5 << 20
	// MaxFilesPerUpload caps a multi-file upload.
	MaxFilesPerUpload  = 10

	maxAltLen     = 200
	maxCaptionLen = 500
)

// allowedTypes is the upload allow-list.
var allowedTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"video/mp4",
	"video/mpeg",
	"video/quicktime",
	"video/webm",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
}

// Allowed reports whether a MIME type may be uploaded. Parameters such as
// "; charset=utf-8" are ignored.
func Allowed(mimetype string) bool {
	base, _, _ := strings.Cut(mimetype, ";")
	return slices.Contains(allowedTypes, strings.ToLower(strings.TrimSpace(base)))
}

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	View(ctx context.Context, id uuid.UUID) (*models.MediaView, error)
	List(ctx context.Context, f query.MediaFilter, sort query.Sort, page query.Page) (query.Result[models.MediaView], error)
	UpdateMeta(ctx context.Context, id uuid.UUID, alt, caption string) (*models.Media, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (models.MediaStats, error)
}

// File is one uploaded file as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
	Alt         string
	Caption     string
}

// Meta is a partial alt/caption update.
type Meta struct {
	Alt     *string
	Caption *string
}

// Service coordinates the repository and the storage backend.
type Service struct {
	repo        Repository
	backend     storage.Backend
	maxFileSize int64
}

// NewService returns a Service. A maxFileSize of zero means
// DefaultMaxFileSize.
func NewService(repo Repository, backend storage.Backend, maxFileSize int64) *Service {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Service{repo: repo, backend: backend, maxFileSize: maxFileSize}
}

// MaxFileSize is the per-file limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Service) check(f File) map[string]string {
	fields := metaFields(f.Alt, f.Caption)
	if !Allowed(f.ContentType) {
		fields["file"] = fmt.Sprintf("file type %s is not allowed", f.ContentType)
	} else if f.Size > s.maxFileSize {
		fields["file"] = fmt.Sprintf("file too large (max %d bytes)", s.maxFileSize)
	}
	return fields
}

func metaFields(alt, caption string) map[string]string {
	fields := map[string]string{}
	if utf8.RuneCountInString(alt) > maxAltLen {
		fields["alt"] = fmt.Sprintf("alt text cannot exceed %d characters", maxAltLen)
	}
	if utf8.RuneCountInString(caption) > maxCaptionLen {
		fields["caption"] = fmt.Sprintf("caption cannot exceed %d characters", maxCaptionLen)
	}
	return fields
}

// Upload stores one file and records it. If recording fails the stored
// object is removed again.
func (s *Service) Upload(ctx context.Context, actor *models.User, f File) (*models.Media, error) {
	if err := authz.Authorize(actor, authz.MediaUpload, nil).Err(); err != nil {
		return nil, err
	}
	if fields := s.check(f); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}
	return s.store(ctx, actor, f)
}

// UploadMany validates every file up front, then stores them one by one.
// A file that fails to store is cleaned up and skipped; the rest are kept.
func (s *Service) UploadMany(ctx context.Context, actor *models.User, files []File) ([]models.Media, error) {
	if err := authz.Authorize(actor, authz.MediaUpload, nil).Err(); err != nil {
		return nil, err
	}
	switch {
	case len(files) == 0:
		return nil, apperr.Invalid("files", "no files uploaded")
	case len(files) > MaxFilesPerUpload:
		return nil, apperr.Invalid("files", fmt.Sprintf("too many files (max %d)", MaxFilesPerUpload))
	}
	for i, f := range files {
		if fields := s.check(f); len(fields) > 0 {
			prefixed := make(map[string]string, len(fields))
			for k, v := range fields {
				prefixed[fmt.Sprintf("files[%d].%s", i, k)] = v
			}
			return nil, apperr.Validation(prefixed)
		}
	}

	uploaded := make([]models.Media, 0, len(files))
	for _, f := range files {
		m, err := s.store(ctx, actor, f)
		if err != nil {
			zap.L().Warn("skipping file in multi-upload", zap.String("name", f.Name), zap.Error(err))
			continue
		}
		uploaded = append(uploaded, *m)
	}
	return uploaded, nil
}

func (s *Service) store(ctx context.Context, actor *models.User, f File) (*models.Media, error) {
	key := storage.ObjectKey(f.Name)
	url, err := s.backend.Put(ctx, key, f.ContentType, f.Body, f.Size)
	if err != nil {
		return nil, apperr.StoreUnavailable(fmt.Errorf("store upload: %w", err))
	}

	m, err := s.repo.Create(ctx, &models.Media{
		Filename:     key,
		OriginalName: f.Name,
		MimeType:     f.ContentType,
		Size:         f.Size,
		Path:         key,
		URL:          url,
		Alt:          strings.TrimSpace(f.Alt),
		Caption:      strings.TrimSpace(f.Caption),
		UploadedBy:   actor.ID,
	})
	if err != nil {
		if rmErr := s.backend.Remove(ctx, key); rmErr != nil {
			zap.L().Error("remove orphaned upload", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, err
	}
	zap.L().Info("media uploaded",
		zap.String("id", m.ID.String()),
		zap.String("mimetype", m.MimeType),
		zap.Int64("size", m.Size),
	)
	return m, nil
}

// Get returns an active media item with its uploader.
func (s *Service) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.MediaView, error) {
	if err := authz.Authorize(actor, authz.MediaRead, nil).Err(); err != nil {
		return nil, err
	}
	v, err := s.repo.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.IsActive {
		return nil, apperr.NotFound("media")
	}
	return v, nil
}

// List returns a page of active media.
func (s *Service) List(ctx context.Context, actor *models.User, f query.MediaFilter, sort query.Sort, page query.Page) (query.Result[models.MediaView], error) {
	if err := authz.Authorize(actor, authz.MediaRead, nil).Err(); err != nil {
		return query.Result[models.MediaView]{}, err
	}
	f.IncludeInactive = false
	return s.repo.List(ctx, f, sort, page)
}

// load fetches a media item of any status and runs the ownership gate.
func (s *Service) load(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Media, error) {
	if err := authz.Authorize(actor, authz.MediaModify, nil).Err(); err != nil {
		return nil, err
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("media")
	}
	if err := authz.Authorize(actor, authz.MediaModify, m).Err(); err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, apperr.NotFound("media")
	}
	return m, nil
}

// Update edits alt text and caption. Only the uploader or an admin may.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, meta Meta) (*models.Media, error) {
	m, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	alt, caption := m.Alt, m.Caption
	if meta.Alt != nil {
		alt = strings.TrimSpace(*meta.Alt)
	}
	if meta.Caption != nil {
		caption = strings.TrimSpace(*meta.Caption)
	}
	if fields := metaFields(alt, caption); len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	updated, err := s.repo.UpdateMeta(ctx, id, alt, caption)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("media")
	}
	return updated, nil
}

// DeleteResult says how far a delete went.
type DeleteResult struct {
	Permanent   bool `json:"permanent"`
	FileRemoved bool `json:"file_removed"`
}

// Delete soft-deletes a media item. With permanent set the stored file is
// removed too and then the row; if the file cannot be removed the item
// stays soft-deleted and the failure is only logged.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID, permanent bool) (DeleteResult, error) {
	m, err := s.load(ctx, actor, id)
	if err != nil {
		return DeleteResult{}, err
	}
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if !ok {
		return DeleteResult{}, apperr.NotFound("media")
	}
	if !permanent {
		return DeleteResult{}, nil
	}

	if err := s.backend.Remove(ctx, m.Path); err != nil {
		zap.L().Error("remove media file", zap.String("id", id.String()), zap.String("key", m.Path), zap.Error(err))
		return DeleteResult{}, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return DeleteResult{FileRemoved: true}, err
	}
	return DeleteResult{Permanent: true, FileRemoved: true}, nil
}

// Stats summarizes the active library.
func (s *Service) Stats(ctx context.Context, actor *models.User) (models.MediaStats, error) {
	if err := authz.Authorize(actor, authz.MediaStats, nil).Err(); err != nil {
		return models.MediaStats{}, err
	}
	return s.repo.Stats(ctx)
}
