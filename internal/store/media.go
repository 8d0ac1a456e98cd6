// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pressroom/internal/models"
	"pressroom/internal/query"
)

// MediaStore handles all media-related database operations.
type MediaStore struct {
	db *sqlx.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sqlx.DB) *MediaStore {
	return &MediaStore{db: db}
}

// mediaColumns lists the columns selected in media queries.
const mediaColumns = `m.id, m.filename, m.original_name, m.mimetype, m.size, m.path, m.url,
	m.alt, m.caption, m.uploaded_by, m.is_active, m.created_at, m.updated_at`

const mediaViewSelect = `SELECT ` + mediaColumns + `,
	u.username AS uploader_username, u.display_name AS uploader_display_name
FROM media m
LEFT JOIN users u ON u.id = m.uploaded_by`

type mediaRow struct {
	models.Media
	UploaderUsername    sql.NullString `db:"uploader_username"`
	UploaderDisplayName sql.NullString `db:"uploader_display_name"`
}

func (r *mediaRow) view() models.MediaView {
	v := models.MediaView{Media: r.Media, Kind: r.Media.Kind(), HumanSize: r.Media.HumanSize()}
	if r.UploaderUsername.Valid {
		v.Uploader = &models.UserSummary{
			ID:          r.UploadedBy,
			Username:    r.UploaderUsername.String,
			DisplayName: r.UploaderDisplayName.String,
		}
	}
	return v
}

// Create inserts a new media record and returns it with the generated ID.
func (s *MediaStore) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	var created models.Media
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO media AS m (filename, original_name, mimetype, size, path, url, alt, caption, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalName, m.MimeType, m.Size, m.Path, m.URL, m.Alt, m.Caption, m.UploadedBy,
	)
	if err != nil {
		return nil, storeError("create media", err)
	}
	return &created, nil
}

// FindByID retrieves a single media record by its UUID, active or not.
// Returns nil if not found.
func (s *MediaStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var m models.Media
	err := s.db.GetContext(ctx, &m, `SELECT `+mediaColumns+` FROM media m WHERE m.id = $1`, id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find media by id", err)
	}
	return &m, nil
}

// View loads a media record with its uploader summary. Returns nil if not
// found.
func (s *MediaStore) View(ctx context.Context, id uuid.UUID) (*models.MediaView, error) {
	var row mediaRow
	err := s.db.GetContext(ctx, &row, mediaViewSelect+` WHERE m.id = $1`, id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("view media", err)
	}
	v := row.view()
	return &v, nil
}

// List returns a filtered page of media items with uploader summaries.
func (s *MediaStore) List(ctx context.Context, f query.MediaFilter, sort query.Sort, page query.Page) (query.Result[models.MediaView], error) {
	w := f.Where()

	var res query.Result[models.MediaView]
	if err := s.db.GetContext(ctx, &res.Total, `SELECT COUNT(*) FROM media m `+w.SQL(), w.Args()...); err != nil {
		return res, storeError("count media", err)
	}

	pw := w.Clone()
	q := fmt.Sprintf(`%s %s ORDER BY %s LIMIT %s OFFSET %s`,
		mediaViewSelect, pw.SQL(), query.MediaSorter.OrderBy(sort), pw.Arg(page.Limit()), pw.Arg(page.Offset()))

	var rows []mediaRow
	if err := s.db.SelectContext(ctx, &rows, q, pw.Args()...); err != nil {
		return res, storeError("list media", err)
	}
	res.Items = make([]models.MediaView, len(rows))
	for i := range rows {
		res.Items[i] = rows[i].view()
	}
	return res, nil
}

// UpdateMeta sets alt text and caption on an active media item. Returns
// nil if the item does not exist or was deleted.
func (s *MediaStore) UpdateMeta(ctx context.Context, id uuid.UUID, alt, caption string) (*models.Media, error) {
	var m models.Media
	err := s.db.GetContext(ctx, &m, `
		UPDATE media m SET alt = $1, caption = $2, updated_at = NOW()
		WHERE m.id = $3 AND m.is_active = TRUE
		RETURNING `+mediaColumns, alt, caption, id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("update media", err)
	}
	return &m, nil
}

// SoftDelete marks an active media item inactive. It reports false if
// there was no active item to delete.
func (s *MediaStore) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE media SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return false, storeError("soft delete media", err)
	}
	return rowsAffected(res) > 0, nil
}

// Delete removes the media row. The caller removes the stored file first.
func (s *MediaStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id); err != nil {
		return storeError("delete media", err)
	}
	return nil
}

// Stats counts active media by MIME bucket.
func (s *MediaStore) Stats(ctx context.Context) (models.MediaStats, error) {
	var st models.MediaStats
	err := s.db.GetContext(ctx, &st, `
		SELECT COUNT(*) AS total_files,
		       COALESCE(SUM(size), 0)::bigint AS total_size,
		       COUNT(*) FILTER (WHERE mimetype LIKE 'image/%') AS image_count,
		       COUNT(*) FILTER (WHERE mimetype LIKE 'video/%') AS video_count,
		       COUNT(*) FILTER (WHERE mimetype LIKE 'audio/%') AS audio_count,
		       COUNT(*) FILTER (WHERE mimetype LIKE 'application/%' OR mimetype LIKE 'text/%') AS document_count
		FROM media
		WHERE is_active = TRUE`)
	if err != nil {
		return st, storeError("media stats", err)
	}
	return st, nil
}
