// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Pressroom JSON API.
// Handlers are grouped by resource and receive their dependencies through
// the handler struct. Every failure goes through render.Error so status
// codes are decided in one place.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pressroom/internal/apperr"
)

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Invalid("id", "must be a valid id")
	}
	return id, nil
}

// flag reports whether query parameter key is "true" or "1".
func flag(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// optionalID is a JSON id field that distinguishes "absent" from "null".
// Absent leaves Set false; null or "" sets it with a nil ID.
type optionalID struct {
	Set bool
	ID  *uuid.UUID
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.ID = &id
	return nil
}
