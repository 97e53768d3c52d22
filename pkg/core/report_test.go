package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSyncReport_Filters(t *testing.T) {
	r := &SyncReport{}
	r.Record("gone", "/w/gone.md", ChangeDeleted, nil)
	r.Record("b", "/w/b.md", ChangeCreated, nil)
	r.Record("a", "/w/a.md", ChangeCreated, nil)
	r.Record("", "/w/bad.json", ChangeFailed, &ParseError{Path: "/w/bad.json", Err: errors.New("eof")})
	r.Record("", "/w/tmp.md", ChangeSkipped, nil)

	if got := len(r.Created()); got != 2 {
		t.Errorf("Created() = %d, want 2", got)
	}
	if got := len(r.Removed()); got != 1 {
		t.Errorf("Removed() = %d, want 1", got)
	}
	if got := len(r.Modified()); got != 0 {
		t.Errorf("Modified() = %d, want 0", got)
	}
	if c := r.Counts(); c[ChangeFailed] != 1 || c[ChangeSkipped] != 1 {
		t.Errorf("Counts() = %v", c)
	}

	var nilReport *SyncReport
	if nilReport.Created() == nil {
		t.Error("nil report must yield empty, non-nil slices")
	}
}

func TestNewSyncResult(t *testing.T) {
	r := &SyncReport{}
	r.Record("gone", "/w/gone.md", ChangeDeleted, nil)
	r.Record("b", "/w/b.md", ChangeCreated, nil)
	r.Record("Alpha", "/w/notes/a.md", ChangeCreated, nil)
	r.Record("c", "/w/c.txt", ChangeModified, nil)
	r.Record("", "/w/bad.json", ChangeFailed, errors.New("bad json"))

	res := NewSyncResult(r)
	if strings.Join(res.New, ",") != "/w/b.md,/w/notes/a.md" {
		t.Errorf("New should list file paths, got %v", res.New)
	}
	if strings.Join(res.Modified, ",") != "/w/c.txt" {
		t.Errorf("Modified should list file paths, got %v", res.Modified)
	}
	if len(res.Deleted) != 1 || res.Deleted[0].Title != "gone" || res.Deleted[0].File != "/w/gone.md" {
		t.Errorf("Deleted = %+v", res.Deleted)
	}
	if len(res.Failed) != 1 || res.Failed[0].Error != "bad json" {
		t.Errorf("Failed = %+v", res.Failed)
	}

	data, err := json.Marshal(NewSyncResult(nil))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"new":[],"deleted":[],"modified":[],"failed":[],"skipped":[]}`
	if string(data) != want {
		t.Errorf("empty result = %s, want %s", data, want)
	}
}

func TestErrors_Is(t *testing.T) {
	cases := []struct {
		err    error
		target error
	}{
		{&IOError{Op: "scan", Path: "/w", Err: errors.New("denied")}, ErrIO},
		{&ParseError{Path: "x", Err: errors.New("bad")}, ErrParse},
		{&StaleMetadataError{Path: "x", Attempts: 3}, ErrStaleMetadata},
		{&NotFoundError{ID: "x"}, ErrNotFound},
		{&CleanupError{Path: "x", Errs: []error{errors.New("busy")}}, ErrIO},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.target) {
			t.Errorf("%T does not match %v", tc.err, tc.target)
		}
	}

	inner := errors.New("inner")
	cleanup := &CleanupError{Path: "x", Errs: []error{inner}}
	if !errors.Is(cleanup, inner) {
		t.Error("CleanupError must unwrap its errors")
	}
}
