package natives

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/mcversion"
)

func buildNativeZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("liblwjgl.so")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("binarydata")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestMaterializeExtractsMatchingClassifier(t *testing.T) {
	zipData := buildNativeZip(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	}))
	defer srv.Close()

	nativesDir := filepath.Join(t.TempDir(), "natives")
	client := fetch.New(2, nil)
	m := New(client, nativesDir, nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{
				Name: "org.lwjgl:lwjgl:3.3.1",
				Downloads: &mcversion.LibraryDownloads{
					Classifiers: map[string]*mcversion.Artifact{
						"natives-linux":   {Path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar", URL: srv.URL + "/n.jar"},
						"natives-windows": {Path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-windows.jar", URL: srv.URL + "/w.jar"},
					},
				},
			},
		},
	}

	if err := m.Materialize(context.Background(), desc, "linux"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(nativesDir, "liblwjgl.so")); err != nil {
		t.Fatalf("expected extracted native file: %v", err)
	}
}

func TestMaterializeIdempotentSkip(t *testing.T) {
	nativesDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(nativesDir, "already-here.so"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := fetch.New(2, nil)
	m := New(client, nativesDir, nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{
				Name: "org.lwjgl:lwjgl:3.3.1",
				Downloads: &mcversion.LibraryDownloads{
					Classifiers: map[string]*mcversion.Artifact{
						"natives-linux": {Path: "x.jar", URL: "http://unused.invalid/x.jar"},
					},
				},
			},
		},
	}

	if err := m.Materialize(context.Background(), desc, "linux"); err != nil {
		t.Fatal(err)
	}
}

func TestMaterializeSkipsLibraryWithoutClassifiers(t *testing.T) {
	nativesDir := filepath.Join(t.TempDir(), "natives")
	client := fetch.New(2, nil)
	m := New(client, nativesDir, nil)

	desc := mcversion.VersionDescriptor{
		Libraries: []mcversion.Library{
			{Name: "com.google.guava:guava:31.1", Downloads: &mcversion.LibraryDownloads{}},
		},
	}

	if err := m.Materialize(context.Background(), desc, "linux"); err != nil {
		t.Fatal(err)
	}
}

func TestClassifierKeysOSXFallsBackToMacos(t *testing.T) {
	keys := classifierKeys("osx")
	if len(keys) != 2 || keys[0] != "natives-osx" || keys[1] != "natives-macos" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
