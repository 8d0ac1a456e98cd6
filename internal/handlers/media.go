// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/media"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/render"
)

// multipartOverhead is the room left for form fields and boundaries on
// top of the file bytes.
const multipartOverhead = 1 << 20

// Media groups the media library endpoints.
type Media struct {
	media *media.Service
}

// NewMedia creates a new Media handler group.
func NewMedia(svc *media.Service) *Media {
	return &Media{media: svc}
}

type mediaUpdateRequest struct {
	Alt     *string `json:"alt" validate:"omitempty,max=200"`
	Caption *string `json:"caption" validate:"omitempty,max=500"`
}

// List returns a page of active media.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	f, err := query.ParseMediaFilter(values)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	sort, err := query.MediaSorter.Parse(values.Get("sort"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	page := query.ParsePage(values, query.MediaPageSize)

	res, err := h.media.List(r.Context(), middleware.UserFromCtx(r.Context()), f, sort, page)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.List(w, res, page)
}

// Stats summarizes the media library.
func (h *Media) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.media.Stats(r.Context(), middleware.UserFromCtx(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, st)
}

// Get returns one media item with its uploader.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	m, err := h.media.Get(r.Context(), middleware.UserFromCtx(r.Context()), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, m)
}

// Upload stores the single file in form field "file". Optional "alt" and
// "caption" form fields describe it.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r, 1); err != nil {
		render.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		render.Error(w, r, apperr.Invalid("file", "no file uploaded"))
		return
	}

	f, closeFile, err := openPart(headers[0])
	if err != nil {
		render.Error(w, r, err)
		return
	}
	defer closeFile()
	f.Alt = r.FormValue("alt")
	f.Caption = r.FormValue("caption")

	m, err := h.media.Upload(r.Context(), middleware.UserFromCtx(r.Context()), f)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, m)
}

// UploadMany stores up to media.MaxFilesPerUpload files from form field
// "files". Files that fail to store are skipped; the response lists the
// ones that made it.
func (h *Media) UploadMany(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r, media.MaxFilesPerUpload); err != nil {
		render.Error(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > media.MaxFilesPerUpload {
		render.Error(w, r, apperr.Invalid("files", fmt.Sprintf("at most %d files per upload", media.MaxFilesPerUpload)))
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, closeFile, err := openPart(fh)
		if err != nil {
			render.Error(w, r, err)
			return
		}
		defer closeFile()
		files = append(files, f)
	}

	stored, err := h.media.UploadMany(r.Context(), middleware.UserFromCtx(r.Context()), files)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, struct {
		Message string         `json:"message"`
		Files   []models.Media `json:"files"`
	}{Message: fmt.Sprintf("%d of %d files uploaded", len(stored), len(files)), Files: stored})
}

// parseForm bounds the request body and parses it as multipart.
func (h *Media) parseForm(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	limit := h.media.MaxFileSize()*int64(maxFiles) + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Invalid("file", fmt.Sprintf("upload exceeds %d bytes", limit))
		}
		return apperr.Invalid("file", "expected a multipart/form-data body")
	}
	return nil
}

func openPart(fh *multipart.FileHeader) (media.File, func(), error) {
	body, err := fh.Open()
	if err != nil {
		return media.File{}, nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	closeFile := func() {
		if err := body.Close(); err != nil {
			zap.L().Debug("close upload part", zap.String("name", fh.Filename), zap.Error(err))
		}
	}
	return media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	}, closeFile, nil
}

// Update changes alt text and caption.
func (h *Media) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req mediaUpdateRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	m, err := h.media.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, media.Meta{Alt: req.Alt, Caption: req.Caption})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, m)
}

// Delete soft-deletes a media item; ?permanent=true also removes the file.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	res, err := h.media.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id, flag(r, "permanent"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		media.DeleteResult
	}{Message: "media deleted", DeleteResult: res})
}
