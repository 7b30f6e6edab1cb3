package config

import (
	"path/filepath"
	"testing"
)

func TestBuilderAppliesDefaults(t *testing.T) {
	r := NewBuilder(nil).WithRoot("/tmp/mc").Build()

	if r.Root != "/tmp/mc" {
		t.Fatalf("Root = %q", r.Root)
	}
	if r.VersionsDir != filepath.Join("/tmp/mc", "versions") {
		t.Fatalf("VersionsDir = %q", r.VersionsDir)
	}
	if r.MetaBaseURL != DefaultMetaBaseURL {
		t.Fatalf("MetaBaseURL = %q", r.MetaBaseURL)
	}
	if r.MaxSockets != DefaultMaxSockets {
		t.Fatalf("MaxSockets = %d, want default %d", r.MaxSockets, DefaultMaxSockets)
	}
	if r.MinArgs != 0 {
		t.Fatalf("MinArgs = %d, want 0 (no override means caller-side threshold default)", r.MinArgs)
	}
}

func TestBuilderOverridesWin(t *testing.T) {
	base := DefaultConfig()
	r := NewBuilder(base).
		WithRoot("/tmp/mc").
		WithOverrides(Overrides{MaxSockets: 8, MinArgs: 3, MetaBaseURL: "https://meta.example.com"}).
		Build()

	if r.MaxSockets != 8 {
		t.Fatalf("MaxSockets = %d, want override 8", r.MaxSockets)
	}
	if r.MinArgs != 3 {
		t.Fatalf("MinArgs = %d, want override 3", r.MinArgs)
	}
	if r.MetaBaseURL != "https://meta.example.com" {
		t.Fatalf("MetaBaseURL = %q, want override", r.MetaBaseURL)
	}
	if r.ResourceBaseURL != DefaultResourceBaseURL {
		t.Fatalf("ResourceBaseURL = %q, want default fallthrough", r.ResourceBaseURL)
	}
}

func TestBuilderRootDefaultsToDataDir(t *testing.T) {
	base := DefaultConfig()
	r := NewBuilder(base).Build()
	if r.Root != base.DataDir {
		t.Fatalf("Root = %q, want base.DataDir %q", r.Root, base.DataDir)
	}
}
