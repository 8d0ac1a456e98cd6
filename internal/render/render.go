// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes JSON responses and decodes JSON requests for the
// API. Every error response has the same shape:
//
//	{"error": "<Kind>", "message": "...", "count": n, "fields": {...}}
//
// where count and fields only appear for HasPosts and ValidationFailed.
package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/query"
)

// exposeDetail adds wrapped causes to error bodies. Off in production.
var exposeDetail atomic.Bool

// ExposeErrorDetail toggles whether error responses carry the wrapped
// cause of store failures.
func ExposeErrorDetail(on bool) {
	exposeDetail.Store(on)
}

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Count   *int              `json:"count,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err to its status and body. Errors that are not typed are
// logged and reported as a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		zap.L().Error("unhandled error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: "InternalError", Message: "internal server error"})
		return
	}

	body := ErrorBody{Error: string(e.Kind), Message: e.Message, Fields: e.Fields}
	if e.Kind == apperr.KindHasPosts {
		count := e.Count
		body.Count = &count
	}
	if e.Kind == apperr.KindStoreUnavailable {
		zap.L().Error("store unavailable",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(e.Err),
		)
		if e.Err != nil && exposeDetail.Load() {
			body.Detail = e.Err.Error()
		}
	}
	JSON(w, e.Status(), body)
}

// Page is the envelope for list responses.
type Page[T any] struct {
	Items      []T              `json:"items"`
	Pagination query.Pagination `json:"pagination"`
}

// List writes one page of results.
func List[T any](w http.ResponseWriter, res query.Result[T], page query.Page) {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	JSON(w, http.StatusOK, Page[T]{Items: items, Pagination: page.Paginate(res.Total)})
}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Decode reads a JSON body into dst. Unknown fields are rejected so typos
// surface as validation failures instead of silent no-ops.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid("body", "request body too large")
		}
		return apperr.Invalid("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// Bind decodes the body and runs struct validation.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := Decode(w, r, dst); err != nil {
		return err
	}
	return Validate(dst)
}
