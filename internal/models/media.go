// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaKind is the coarse bucket a MIME type falls into.
type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindAudio    MediaKind = "audio"
	MediaKindDocument MediaKind = "document"
	MediaKindOther    MediaKind = "other"
)

// MediaKinds lists the buckets that can be filtered on.
var MediaKinds = []MediaKind{MediaKindImage, MediaKindVideo, MediaKindAudio, MediaKindDocument}

// Prefixes returns the MIME type prefixes that belong to the kind.
func (k MediaKind) Prefixes() []string {
	switch k {
	case MediaKindImage:
		return []string{"image/"}
	case MediaKindVideo:
		return []string{"video/"}
	case MediaKindAudio:
		return []string{"audio/"}
	case MediaKindDocument:
		return []string{"application/", "text/"}
	}
	return nil
}

// ClassifyMime buckets a MIME type by prefix.
func ClassifyMime(mimetype string) MediaKind {
	mimetype = strings.ToLower(mimetype)
	for _, kind := range MediaKinds {
		for _, prefix := range kind.Prefixes() {
			if strings.HasPrefix(mimetype, prefix) {
				return kind
			}
		}
	}
	return MediaKindOther
}

// Media is an uploaded file record. The bytes live in the storage backend
// under Path; URL is where clients fetch them from.
type Media struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mimetype" json:"mimetype"`
	Size         int64     `db:"size" json:"size"`
	Path         string    `db:"path" json:"path"`
	URL          string    `db:"url" json:"url"`
	Alt          string    `db:"alt" json:"alt"`
	Caption      string    `db:"caption" json:"caption"`
	UploadedBy   uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return ClassifyMime(m.MimeType) == MediaKindImage
}

// Kind returns the MIME bucket of the media item.
func (m *Media) Kind() MediaKind {
	return ClassifyMime(m.MimeType)
}

// OwnerOf resolves the owner field used by the authorization policy.
func (m *Media) OwnerOf(field string) (uuid.UUID, bool) {
	if field == "uploadedBy" {
		return m.UploadedBy, true
	}
	return uuid.Nil, false
}

// HumanSize returns a human-readable file size string.
func (m *Media) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.Size)/float64(mb))
	case m.Size >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.Size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.Size)
	}
}

// MediaView is the response shape for a media item with its uploader.
type MediaView struct {
	Media
	Uploader  *UserSummary `json:"uploaded_by_user,omitempty"`
	Kind      MediaKind    `json:"kind"`
	HumanSize string       `json:"human_size"`
}

// MediaStats summarizes the active media library.
type MediaStats struct {
	TotalFiles    int   `db:"total_files" json:"total_files"`
	TotalSize     int64 `db:"total_size" json:"total_size"`
	ImageCount    int   `db:"image_count" json:"image_count"`
	VideoCount    int   `db:"video_count" json:"video_count"`
	AudioCount    int   `db:"audio_count" json:"audio_count"`
	DocumentCount int   `db:"document_count" json:"document_count"`
}
