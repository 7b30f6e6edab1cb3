package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/urixen-org/mclaunch/internal/events"
)

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	sink := events.NewChannelSink(16)
	c := New(2, sink)

	res := c.Fetch(context.Background(), srv.URL, dir, "file.txt", true, "classes")
	if !res.OK || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(dir, "file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestFetchNotFoundSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(1, nil)

	res := c.Fetch(context.Background(), srv.URL, dir, "file.txt", true, "assets")
	if !res.SkippedNotFound {
		t.Fatalf("expected skippedNotFound, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "file.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected no file written, stat err = %v", err)
	}
}

func TestFetchRetriesOnceThenGivesUp(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(1, nil)

	res := c.Fetch(context.Background(), srv.URL, dir, "file.txt", true, "classes")
	if res.OK {
		t.Fatalf("expected failure")
	}
	if attempts != 2 {
		t.Fatalf("expected exactly 2 attempts (1 + 1 retry), got %d", attempts)
	}
}

func TestFetchNoRetryIsSingleAttempt(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(1, nil)

	res := c.Fetch(context.Background(), srv.URL, dir, "file.txt", false, "classes")
	if res.OK {
		t.Fatalf("expected failure")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestMatchesSHA1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	// sha1("hello") = aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d
	if !MatchesSHA1(path, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d") {
		t.Fatal("expected matching hash")
	}
	if MatchesSHA1(path, "deadbeef") {
		t.Fatal("expected mismatch")
	}
	if !MatchesSHA1(path, "") {
		t.Fatal("empty expected hash should be treated as match")
	}
}

func TestMatchesSHA1MissingFile(t *testing.T) {
	if MatchesSHA1(filepath.Join(t.TempDir(), "missing"), "deadbeef") {
		t.Fatal("missing file should not match")
	}
}
