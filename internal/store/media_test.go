// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"pressroom/internal/models"
	"pressroom/internal/query"
)

func TestMediaStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewMediaStore(db)
	uploader := newUser(t, db, models.RoleAuthor)

	m := newMedia(t, db, uploader.ID, "photo.jpg", "image/jpeg", 2048)
	if m.ID == uuid.Nil || !m.IsActive {
		t.Errorf("created media = %+v", m)
	}

	v, err := s.View(ctx, m.ID)
	if err != nil || v == nil {
		t.Fatalf("View: %v, %v", v, err)
	}
	if v.Kind != models.MediaKindImage || v.HumanSize != "2 KB" {
		t.Errorf("derived fields: kind %q size %q", v.Kind, v.HumanSize)
	}
	if v.Uploader == nil || v.Uploader.ID != uploader.ID {
		t.Errorf("uploader = %+v", v.Uploader)
	}

	// Not found returns nil, nil.
	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("FindByID missing = %v, %v", missing, err)
	}
}

func TestMediaStoreListFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewMediaStore(db)
	alice := newUser(t, db, models.RoleAuthor)
	bob := newUser(t, db, models.RoleAuthor)

	newMedia(t, db, alice.ID, "holiday.png", "image/png", 100)
	newMedia(t, db, alice.ID, "report_100%.pdf", "application/pdf", 200)
	newMedia(t, db, bob.ID, "notes.txt", "text/plain", 300)
	newMedia(t, db, bob.ID, "clip.mp4", "video/mp4", 400)
	gone := newMedia(t, db, bob.ID, "old.png", "image/png", 500)
	if ok, err := s.SoftDelete(ctx, gone.ID); err != nil || !ok {
		t.Fatalf("SoftDelete: %v, %v", ok, err)
	}

	tests := []struct {
		name   string
		filter query.MediaFilter
		want   int
	}{
		{name: "active only", filter: query.MediaFilter{}, want: 4},
		{name: "images", filter: query.MediaFilter{Kind: models.MediaKindImage}, want: 1},
		{name: "documents", filter: query.MediaFilter{Kind: models.MediaKindDocument}, want: 2},
		{name: "uploader", filter: query.MediaFilter{UploadedBy: &bob.ID}, want: 2},
		{name: "search is case insensitive", filter: query.MediaFilter{Search: "HOLIDAY"}, want: 1},
		{name: "percent is literal", filter: query.MediaFilter{Search: "100%"}, want: 1},
		{name: "underscore is literal", filter: query.MediaFilter{Search: "t_"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.List(ctx, tt.filter, query.MediaSorter.Default, query.NewPage(1, 20, query.MediaPageSize))
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if res.Total != tt.want {
				t.Errorf("total = %d, want %d", res.Total, tt.want)
			}
		})
	}
}

func TestMediaStoreUpdateAndDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewMediaStore(db)
	m := newMedia(t, db, newUser(t, db, models.RoleAuthor).ID, "a.png", "image/png", 10)

	updated, err := s.UpdateMeta(ctx, m.ID, "Alt text", "A caption")
	if err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if updated.Alt != "Alt text" || updated.Caption != "A caption" {
		t.Errorf("meta = %q / %q", updated.Alt, updated.Caption)
	}

	if ok, _ := s.SoftDelete(ctx, m.ID); !ok {
		t.Fatal("SoftDelete should report true")
	}
	if ok, _ := s.SoftDelete(ctx, m.ID); ok {
		t.Error("second SoftDelete should report false")
	}
	if got, _ := s.UpdateMeta(ctx, m.ID, "x", "y"); got != nil {
		t.Error("UpdateMeta must ignore inactive media")
	}

	// The row stays until a permanent delete.
	if got, _ := s.FindByID(ctx, m.ID); got == nil || got.IsActive {
		t.Errorf("soft-deleted row = %+v", got)
	}
	if err := s.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindByID(ctx, m.ID); got != nil {
		t.Error("row should be gone after Delete")
	}
}

func TestMediaStoreStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewMediaStore(db)
	u := newUser(t, db, models.RoleAuthor).ID

	newMedia(t, db, u, "a.png", "image/png", 100)
	newMedia(t, db, u, "b.gif", "image/gif", 100)
	newMedia(t, db, u, "c.mp3", "audio/mpeg", 50)
	newMedia(t, db, u, "d.pdf", "application/pdf", 25)
	hidden := newMedia(t, db, u, "e.mp4", "video/mp4", 1000)
	s.SoftDelete(ctx, hidden.ID)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := models.MediaStats{TotalFiles: 4, TotalSize: 275, ImageCount: 2, AudioCount: 1, DocumentCount: 1}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}
}
