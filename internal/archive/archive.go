// Package archive implements the Archive extractor component (spec.md
// §4.C): unzipping a JAR/ZIP into a directory while tolerating the
// malformed entries vendor-supplied native archives are known to ship.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"archive/zip"
)

// Extract unzips zipFile into destDir, preserving relative paths. Entries
// with unsafe or malformed names (absolute paths, ".." traversal) are
// logged via warn and skipped rather than aborting the whole extraction —
// the teacher's archive helpers in internal/java/download.go show the same
// tolerance for vendor natives shipping odd entries.
func Extract(zipFile, destDir string, overwrite bool, warn func(string)) error {
	if warn == nil {
		warn = func(string) {}
	}

	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", zipFile, err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, ok := safeJoin(destDir, f.Name)
		if !ok {
			warn(fmt.Sprintf("skipping malformed entry %q in %s", f.Name, zipFile))
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				warn(fmt.Sprintf("creating dir for %q: %v", f.Name, err))
			}
			continue
		}

		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}

		if err := extractOne(f, target); err != nil {
			warn(fmt.Sprintf("extracting %q from %s: %v", f.Name, zipFile, err))
			continue
		}
	}

	return nil
}

func extractOne(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// safeJoin joins destDir with a zip entry's (forward-slash) name, rejecting
// absolute paths and parent-directory traversal.
func safeJoin(destDir, name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", false
	}

	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.Join(destDir, cleaned), true
}

// ExtractFile extracts a single named entry from zipFile (matched against
// the zip's internal, forward-slash path) to destPath. Used by the Forge
// overlay to pull version.json out of a universal jar without unpacking
// the whole archive.
func ExtractFile(zipFile, entryName, destPath string) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", zipFile, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryName {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}

		out, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, rc)
		return err
	}

	return fmt.Errorf("entry %q not found in %s", entryName, zipFile)
}

// HasEntry reports whether zipFile contains an entry with the exact given
// name. The Forge overlay uses it to confirm that a legacy universal jar
// embeds version.json; it does not pick between the legacy and modern
// Forge modes, which the caller chooses through launcher.ForgeRequest.
func HasEntry(zipFile, entryName string) (bool, error) {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", zipFile, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == entryName {
			return true, nil
		}
	}
	return false, nil
}
