// Package library implements the Library materializer component (spec.md
// §4.G): resolving each version descriptor's library list to on-disk jars
// and assembling the classpath entry order the launcher will later dedup.
// Grounded on the teacher's internal/launch/launcher.go downloadLibraries
// and buildClasspath, generalized to also derive a path/URL from a bare
// Maven coordinate when downloads.artifact is absent — a case the teacher
// never hit because mctui only ever launched vanilla versions. The
// coordinate-splitting idiom follows other_examples' deps.dev maven
// resolver (strings.Split(name, ":")).
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/mcversion"
	"github.com/urixen-org/mclaunch/internal/rules"
)

// Entry is one resolved library: its name and absolute jar path. It has no
// classpath flag; every Entry goes on the classpath.
type Entry struct {
	Name string
	Path string
}

// Materializer downloads missing library jars and derives classpath
// entries, using client for the actual transfer.
type Materializer struct {
	client       *fetch.Client
	librariesDir string
	mavenBaseURL string
	sink         events.Sink
}

// New creates a Materializer rooted at librariesDir, using mavenBaseURL as
// the fallback repository root for libraries that carry a bare Maven
// coordinate and no downloads.artifact (spec.md §4.G: "construct a simple
// library URL from library.url + group path + artifact + version").
func New(client *fetch.Client, librariesDir, mavenBaseURL string, sink events.Sink) *Materializer {
	if sink == nil {
		sink = events.Discard{}
	}
	return &Materializer{client: client, librariesDir: librariesDir, mavenBaseURL: mavenBaseURL, sink: sink}
}

// coordinatePath splits a Maven coordinate "group:artifact:version[:classifier]"
// into its repository-relative jar path and bare filename. Returns false if
// the coordinate doesn't have at least group:artifact:version.
func coordinatePath(name string) (relPath, filename string, ok bool) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return "", "", false
	}
	group, artifact, version := parts[0], parts[1], parts[2]
	classifier := ""
	if len(parts) > 3 {
		classifier = parts[3]
	}

	filename = artifact + "-" + version
	if classifier != "" {
		filename += "-" + classifier
	}
	filename += ".jar"

	groupPath := strings.ReplaceAll(group, ".", "/")
	relPath = filepath.Join(groupPath, artifact, version, filename)
	return relPath, filename, true
}

// resolveSource returns the repository-relative path and download URL for
// lib, preferring its explicit downloads.artifact and falling back to a
// coordinate-derived path against lib.URL or the materializer's default
// maven base. ok is false when neither source can be determined, meaning
// the library is silently dropped (spec.md §4.G edge case).
func (m *Materializer) resolveSource(lib mcversion.Library) (relPath, url string, ok bool) {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil && lib.Downloads.Artifact.Path != "" {
		return lib.Downloads.Artifact.Path, lib.Downloads.Artifact.URL, true
	}

	relPath, _, derived := coordinatePath(lib.Name)
	if !derived {
		return "", "", false
	}

	base := lib.URL
	if base == "" {
		base = m.mavenBaseURL
	}
	if base == "" {
		return "", "", false
	}
	base = strings.TrimSuffix(base, "/")
	return relPath, base + "/" + filepath.ToSlash(relPath), true
}

// Resolve fetches every rule-included library in descriptor that isn't
// already on disk and returns the ordered classpath entries (caller-side
// dedup, per Design Notes). Libraries with neither an artifact nor a
// derivable coordinate+url are skipped without error.
func (m *Materializer) Resolve(ctx context.Context, descriptor mcversion.VersionDescriptor, currentOS string) ([]Entry, error) {
	var included []mcversion.Library
	for _, lib := range descriptor.Libraries {
		if rules.LibraryIncluded(lib.Rules(), currentOS) {
			included = append(included, lib)
		}
	}

	var entries []Entry

	for _, lib := range included {
		m.sink.Progress(events.Progress{Type: "classes", Task: lib.Name, Total: len(included)})

		relPath, url, ok := m.resolveSource(lib)
		if !ok {
			continue
		}

		jarPath := filepath.Join(m.librariesDir, filepath.FromSlash(relPath))

		expectedSHA1 := ""
		if lib.Downloads != nil && lib.Downloads.Artifact != nil {
			expectedSHA1 = lib.Downloads.Artifact.SHA1
		}

		needsFetch := true
		if _, statErr := os.Stat(jarPath); statErr == nil {
			needsFetch = expectedSHA1 != "" && !fetch.MatchesSHA1(jarPath, expectedSHA1)
		}

		if needsFetch {
			destDir := filepath.Dir(jarPath)
			res := m.client.Fetch(ctx, url, destDir, filepath.Base(jarPath), true, "classes")
			if res.SkippedNotFound {
				continue
			}
			if res.Err != nil {
				return nil, fmt.Errorf("fetching library %s: %w", lib.Name, res.Err)
			}
		}

		entries = append(entries, Entry{Name: lib.Name, Path: jarPath})
	}

	return entries, nil
}

// Classpath renders entries as a single platform-joined classpath string.
// Caller is responsible for deduplicating entries before calling this, and
// for appending the client jar and any Forge overlay prefix.
func Classpath(entries []Entry, pathSeparator string) string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return strings.Join(paths, pathSeparator)
}
