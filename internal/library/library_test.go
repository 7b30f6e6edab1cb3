package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/mcversion"
)

func TestCoordinatePath(t *testing.T) {
	relPath, filename, ok := coordinatePath("org.ow2.asm:asm:9.3")
	if !ok {
		t.Fatal("expected derivation to succeed")
	}
	wantRel := filepath.Join("org", "ow2", "asm", "asm", "9.3", "asm-9.3.jar")
	if relPath != wantRel {
		t.Fatalf("relPath = %q, want %q", relPath, wantRel)
	}
	if filename != "asm-9.3.jar" {
		t.Fatalf("filename = %q", filename)
	}
}

func TestCoordinatePathWithClassifier(t *testing.T) {
	relPath, filename, ok := coordinatePath("org.lwjgl:lwjgl:3.3.1:natives-linux")
	if !ok {
		t.Fatal("expected derivation to succeed")
	}
	if filename != "lwjgl-3.3.1-natives-linux.jar" {
		t.Fatalf("filename = %q", filename)
	}
	if filepath.Base(filepath.Dir(relPath)) != "3.3.1" {
		t.Fatalf("relPath = %q", relPath)
	}
}

func TestCoordinatePathInvalid(t *testing.T) {
	if _, _, ok := coordinatePath("not-a-coordinate"); ok {
		t.Fatal("expected derivation to fail")
	}
}

func TestResolveDownloadsMissingArtifactByURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jarbytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := fetch.New(2, nil)
	m := New(client, dir, "", nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{
				Name: "test:lib:1.0",
				Downloads: &mcversion.LibraryDownloads{
					Artifact: &mcversion.Artifact{Path: "test/lib/1.0/lib-1.0.jar", URL: srv.URL + "/lib.jar"},
				},
			},
		},
	}

	entries, err := m.Resolve(context.Background(), desc, "linux")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, err := os.Stat(entries[0].Path); err != nil {
		t.Fatalf("expected jar on disk: %v", err)
	}
}

func TestResolveSkipsIfExists(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "test", "lib", "1.0", "lib-1.0.jar")
	if err := os.MkdirAll(filepath.Dir(jarPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jarPath, []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := fetch.New(2, nil)
	m := New(client, dir, "", nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{
				Name: "test:lib:1.0",
				Downloads: &mcversion.LibraryDownloads{
					Artifact: &mcversion.Artifact{Path: "test/lib/1.0/lib-1.0.jar", URL: "http://unused.invalid/lib.jar"},
				},
			},
		},
	}

	entries, err := m.Resolve(context.Background(), desc, "linux")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	data, _ := os.ReadFile(jarPath)
	if string(data) != "cached" {
		t.Fatal("expected cached file to be left untouched")
	}
}

func TestResolveDropsUnresolvableLibrary(t *testing.T) {
	dir := t.TempDir()
	client := fetch.New(2, nil)
	m := New(client, dir, "", nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{Name: "not-a-coordinate"},
		},
	}

	entries, err := m.Resolve(context.Background(), desc, "linux")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected library dropped, got %v", entries)
	}
}

func TestResolveRespectsOSRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jarbytes"))
	}))
	defer srv.Close()

	raw := []byte(`{"libraries":[{
		"name":"not-osx:lib:1.0",
		"downloads":{"artifact":{"path":"notosx/lib/1.0/lib-1.0.jar","url":"` + srv.URL + `/lib.jar"}},
		"rules":[{"action":"allow","os":{"name":"windows"}}]
	}]}`)
	var desc mcversion.VersionDescriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		t.Fatal(err)
	}

	osxDir := t.TempDir()
	m := New(fetch.New(2, nil), osxDir, "", nil)
	entries, err := m.Resolve(context.Background(), desc, "osx")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected single-rule-allow-os library excluded on osx, got %v", entries)
	}

	linuxDir := t.TempDir()
	m = New(fetch.New(2, nil), linuxDir, "", nil)
	entries, err = m.Resolve(context.Background(), desc, "linux")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single-rule-allow-os library included on linux, got %v", entries)
	}
}

func TestClasspathJoin(t *testing.T) {
	entries := []Entry{{Path: "/a.jar"}, {Path: "/b.jar"}}
	if got := Classpath(entries, ":"); got != "/a.jar:/b.jar" {
		t.Fatalf("got %q", got)
	}
}
