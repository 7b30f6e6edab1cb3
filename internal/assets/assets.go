// Package assets implements the Asset materializer component (spec.md
// §4.I): fetching a version's asset-index document and every object it
// references into the content-addressed assets store, with an optional
// legacy mirror for pre-1.6 resource layouts. Grounded on the teacher's
// internal/launch/launcher.go downloadAssets, generalized from its
// sequential per-item loop to fan the object fetches out across
// fetch.Client's shared semaphore (spec.md §5: "a global concurrency
// budget, not a per-phase one").
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/mcversion"
)

// ErrVerifyFailed is returned when an object's bytes still don't match its
// expected SHA-1 after a fetch reports success (spec.md §7: "for asset
// objects, record-and-continue is not acceptable").
var ErrVerifyFailed = errors.New("assets: object failed checksum verification after fetch")

// Object is one entry in an asset index: a content hash and size, stored
// under objects/<hash[:2]>/<hash>.
type Object struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Index is the decoded asset-index document. MapToResources marks the
// legacy (pre-1.6) index format where logical names must also be mirrored
// under assets/legacy using their original path.
type Index struct {
	Objects       map[string]Object `json:"objects"`
	MapToResources bool             `json:"map_to_resources,omitempty"`
}

// Materializer fetches an asset index and its referenced objects into
// assetsDir, via resourceBaseURL for object bodies.
type Materializer struct {
	client         *fetch.Client
	assetsDir      string
	resourceBaseURL string
	sink           events.Sink
}

// New creates a Materializer rooted at assetsDir (containing indexes/ and
// objects/ subdirectories), downloading object bodies from resourceBaseURL
// (spec.md §6 default: https://resources.download.minecraft.net).
func New(client *fetch.Client, assetsDir, resourceBaseURL string, sink events.Sink) *Materializer {
	if sink == nil {
		sink = events.Discard{}
	}
	return &Materializer{client: client, assetsDir: assetsDir, resourceBaseURL: resourceBaseURL, sink: sink}
}

func objectPath(assetsDir, hash string) string {
	if len(hash) < 2 {
		return filepath.Join(assetsDir, "objects", hash)
	}
	return filepath.Join(assetsDir, "objects", hash[:2], hash)
}

// IndexPath is the canonical on-disk location of a fetched asset index.
func IndexPath(assetsDir, indexID string) string {
	return filepath.Join(assetsDir, "indexes", indexID+".json")
}

// fetchIndex loads the asset index for ref, fetching it if not already
// cached on disk.
func (m *Materializer) fetchIndex(ctx context.Context, ref mcversion.AssetIndexRef) (Index, error) {
	path := IndexPath(m.assetsDir, ref.ID)

	if data, err := os.ReadFile(path); err == nil {
		var idx Index
		if err := json.Unmarshal(data, &idx); err == nil {
			return idx, nil
		}
	}

	res := m.client.Fetch(ctx, ref.URL, filepath.Dir(path), ref.ID+".json", true, "assets")
	if res.Err != nil {
		return Index{}, fmt.Errorf("fetching asset index %s: %w", ref.ID, res.Err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Index{}, fmt.Errorf("reading fetched asset index %s: %w", ref.ID, err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return Index{}, fmt.Errorf("parsing asset index %s: %w", ref.ID, err)
	}
	return idx, nil
}

// Materialize fetches descriptor's asset index and every object it
// references that isn't already correctly on disk, fanning the object
// fetches out concurrently (bounded by the shared fetch.Client semaphore).
// When the index is a legacy one, each object is additionally mirrored to
// assets/legacy/<logicalName> (spec.md §4.I, IsLegacyAssets).
func (m *Materializer) Materialize(ctx context.Context, descriptor mcversion.VersionDescriptor) error {
	idx, err := m.fetchIndex(ctx, descriptor.AssetIndex)
	if err != nil {
		return err
	}

	legacy := descriptor.IsLegacyAssets() || idx.MapToResources
	total := len(idx.Objects)

	var wg sync.WaitGroup
	errCh := make(chan error, len(idx.Objects))

	for logicalName, obj := range idx.Objects {
		logicalName, obj := logicalName, obj
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.sink.Progress(events.Progress{Type: "assets", Task: logicalName, Total: total})
			if err := m.materializeOne(ctx, logicalName, obj, legacy, total); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Materializer) materializeOne(ctx context.Context, logicalName string, obj Object, legacy bool, total int) error {
	dest := objectPath(m.assetsDir, obj.Hash)

	if !fetch.MatchesSHA1(dest, obj.Hash) {
		url := m.resourceBaseURL + "/" + obj.Hash[:2] + "/" + obj.Hash
		res := m.client.Fetch(ctx, url, filepath.Dir(dest), filepath.Base(dest), true, "assets")
		if res.Err != nil {
			return fmt.Errorf("fetching asset %s: %w", logicalName, res.Err)
		}
		if !fetch.MatchesSHA1(dest, obj.Hash) {
			return fmt.Errorf("%w: asset %s", ErrVerifyFailed, logicalName)
		}
	}

	if legacy {
		m.sink.Progress(events.Progress{Type: "assets-copy", Task: logicalName, Total: total})
		legacyPath := filepath.Join(m.assetsDir, "legacy", filepath.FromSlash(logicalName))
		if _, err := os.Stat(legacyPath); os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(legacyPath), 0o755); err != nil {
				return fmt.Errorf("creating legacy asset dir for %s: %w", logicalName, err)
			}
			data, err := os.ReadFile(dest)
			if err != nil {
				return fmt.Errorf("reading asset %s for legacy mirror: %w", logicalName, err)
			}
			if err := os.WriteFile(legacyPath, data, 0o644); err != nil {
				return fmt.Errorf("writing legacy asset %s: %w", logicalName, err)
			}
		}
	}

	return nil
}
