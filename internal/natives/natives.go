// Package natives implements the Native materializer component (spec.md
// §4.H): selecting each library's OS-specific classifier artifact,
// fetching it, extracting it into the instance's natives directory, and
// verifying its checksum with one retry. Grounded on the teacher's
// java/download.go extractZip (the zip-walking idiom, reused via
// internal/archive) and the classifier map shape carried on
// mcversion.LibraryDownloads, which the teacher's launcher never needed
// because mctui only ever launched LWJGL3-only modern versions.
package natives

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urixen-org/mclaunch/internal/archive"
	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/mcversion"
	"github.com/urixen-org/mclaunch/internal/rules"
)

// classifierKeys lists the classifier keys to try, in order, for an OS.
// "osx" versions predate the "macos" rename; both are tried so older and
// newer manifests resolve the same way (spec.md §4.H).
func classifierKeys(currentOS string) []string {
	switch currentOS {
	case "windows":
		return []string{"natives-windows"}
	case "osx":
		return []string{"natives-osx", "natives-macos"}
	default:
		return []string{"natives-linux"}
	}
}

// Materializer downloads and extracts native library archives into a
// per-instance natives directory.
type Materializer struct {
	client     *fetch.Client
	nativesDir string
	sink       events.Sink
}

// New creates a Materializer that extracts into nativesDir.
func New(client *fetch.Client, nativesDir string, sink events.Sink) *Materializer {
	if sink == nil {
		sink = events.Discard{}
	}
	return &Materializer{client: client, nativesDir: nativesDir, sink: sink}
}

// dirNonEmpty reports whether dir exists and contains at least one entry,
// the idempotent skip condition spec.md §4.H describes.
func dirNonEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// Materialize walks descriptor's libraries, extracting every classifier
// artifact that matches currentOS into the natives directory. Extraction
// failures for one library are logged via the sink and do not abort the
// remaining libraries (spec.md §4.H: "a corrupt native archive for one
// library must not prevent the others from extracting").
func (m *Materializer) Materialize(ctx context.Context, descriptor mcversion.VersionDescriptor, currentOS string) error {
	if dirNonEmpty(m.nativesDir) {
		return nil
	}
	if err := os.MkdirAll(m.nativesDir, 0o755); err != nil {
		return fmt.Errorf("creating natives dir %s: %w", m.nativesDir, err)
	}

	var candidates []mcversion.Library
	for _, lib := range descriptor.Libraries {
		if !rules.LibraryIncluded(lib.Rules(), currentOS) {
			continue
		}
		if lib.Downloads == nil || len(lib.Downloads.Classifiers) == 0 {
			continue
		}
		candidates = append(candidates, lib)
	}

	for _, lib := range candidates {
		m.sink.Progress(events.Progress{Type: "natives", Task: lib.Name, Total: len(candidates)})

		artifact := m.selectClassifier(lib.Downloads.Classifiers, currentOS)
		if artifact == nil || artifact.Path == "" {
			continue
		}

		if err := m.fetchAndExtract(ctx, lib.Name, *artifact); err != nil {
			m.sink.Debug(fmt.Sprintf("natives: skipping %s: %v", lib.Name, err))
		}
	}

	return nil
}

func (m *Materializer) selectClassifier(classifiers map[string]*mcversion.Artifact, currentOS string) *mcversion.Artifact {
	for _, key := range classifierKeys(currentOS) {
		if a, ok := classifiers[key]; ok && a != nil {
			return a
		}
	}
	return nil
}

func (m *Materializer) fetchAndExtract(ctx context.Context, libName string, artifact mcversion.Artifact) error {
	tmpDir, err := os.MkdirTemp("", "mclaunch-natives-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	filename := filepath.Base(artifact.Path)
	res := m.client.Fetch(ctx, artifact.URL, tmpDir, filename, false, "natives")
	if res.SkippedNotFound {
		return fmt.Errorf("native archive not found: %s", artifact.URL)
	}
	if res.Err != nil {
		return res.Err
	}

	archivePath := filepath.Join(tmpDir, filename)
	if artifact.SHA1 != "" && !fetch.MatchesSHA1(archivePath, artifact.SHA1) {
		res = m.client.Fetch(ctx, artifact.URL, tmpDir, filename, false, "natives")
		if res.Err != nil {
			return res.Err
		}
		if artifact.SHA1 != "" && !fetch.MatchesSHA1(archivePath, artifact.SHA1) {
			return fmt.Errorf("checksum mismatch for %s after retry", libName)
		}
	}

	warn := func(msg string) { m.sink.Debug("natives: " + msg) }
	return archive.Extract(archivePath, m.nativesDir, false, warn)
}
