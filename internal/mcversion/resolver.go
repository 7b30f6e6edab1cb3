package mcversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrVersionUnresolvable is returned when a descriptor is neither cached on
// disk nor present in the remote manifest (spec.md §4.E step 3).
var ErrVersionUnresolvable = errors.New("mcversion: version descriptor unresolvable")

// ManifestEntry is one version listed in the top-level manifest.
type ManifestEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
}

// Manifest is the root of Mojang's version_manifest.json.
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

// Resolved is a VersionDescriptor plus the exact bytes it was decoded from,
// so a later persist step (after the client jar download succeeds) can
// write back byte-for-byte rather than a re-marshaled approximation.
type Resolved struct {
	Descriptor VersionDescriptor
	Raw        []byte
}

// Resolver implements the Version resolver component (spec.md §4.E): a
// disk-first, two-stage-manifest-fallback lookup. Grounded on the teacher's
// internal/api/mojang.go GetVersionManifest/GetVersionDetails shape.
type Resolver struct {
	httpClient  *http.Client
	metaBaseURL string
}

// NewResolver creates a Resolver against the given meta endpoint root
// (spec.md §6 default: https://launchermeta.mojang.com).
func NewResolver(metaBaseURL string) *Resolver {
	return &Resolver{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		metaBaseURL: metaBaseURL,
	}
}

// DescriptorPath is the canonical on-disk location for a version's
// descriptor JSON.
func DescriptorPath(versionsDir, id string) string {
	return filepath.Join(versionsDir, id, id+".json")
}

// Resolve loads the descriptor for id: first from overridePath (if
// non-empty) or the canonical versions/<id>/<id>.json path, falling back to
// fetching version_manifest.json and the matched entry's own URL.
func (r *Resolver) Resolve(ctx context.Context, versionsDir, id, overridePath string) (*Resolved, error) {
	path := overridePath
	if path == "" {
		path = DescriptorPath(versionsDir, id)
	}

	if data, err := os.ReadFile(path); err == nil {
		var desc VersionDescriptor
		if err := json.Unmarshal(data, &desc); err != nil {
			return nil, fmt.Errorf("parsing cached descriptor %s: %w", path, err)
		}
		return &Resolved{Descriptor: desc, Raw: data}, nil
	}

	manifest, err := r.fetchManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVersionUnresolvable, err)
	}

	var entry *ManifestEntry
	for i := range manifest.Versions {
		if manifest.Versions[i].ID == id {
			entry = &manifest.Versions[i]
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s not in version manifest", ErrVersionUnresolvable, id)
	}

	data, err := r.fetchJSON(ctx, entry.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVersionUnresolvable, err)
	}

	var desc VersionDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parsing descriptor for %s: %w", id, err)
	}

	return &Resolved{Descriptor: desc, Raw: data}, nil
}

// Persist idempotently writes the resolved descriptor's raw bytes to
// versions/<id>/<id>.json (spec.md §3 Lifecycles: "persisted beside the jar
// after a successful jar fetch").
func Persist(versionsDir, id string, raw []byte) error {
	path := DescriptorPath(versionsDir, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// ListManifest fetches and returns the full version manifest, for callers
// that need to present a version picker rather than resolve a single ID.
func (r *Resolver) ListManifest(ctx context.Context) (*Manifest, error) {
	return r.fetchManifest(ctx)
}

func (r *Resolver) fetchManifest(ctx context.Context) (*Manifest, error) {
	data, err := r.fetchJSON(ctx, r.metaBaseURL+"/mc/game/version_manifest.json")
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing version manifest: %w", err)
	}
	return &manifest, nil
}

func (r *Resolver) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching %s: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
