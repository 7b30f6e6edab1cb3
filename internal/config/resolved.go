package config

import "path/filepath"

// Resolved is the flattened, immutable view of one launch's configuration:
// overrides+options folded onto Config's defaults (spec.md §5.3 Design
// Notes: "a builder, defaults filled once" rather than scattered
// nil-checks through the pipeline).
type Resolved struct {
	Root         string
	VersionsDir  string
	LibrariesDir string
	AssetsDir    string
	NativesDir   string
	ForgeDir     string

	JavaPath string

	MetaBaseURL         string
	ResourceBaseURL     string
	ForgeMavenURL       string
	DefaultForgeRepoURL string
	FallbackMavenURL    string

	MaxSockets int
	MinArgs    int
}

// Overrides mirrors spec.md §6's `overrides.*` launch option, layered onto
// a base Config by the builder.
type Overrides struct {
	MaxSockets          int
	MinArgs             int
	MetaBaseURL         string
	ResourceBaseURL     string
	ForgeMavenURL       string
	DefaultForgeRepoURL string
	FallbackMavenURL    string
	JavaPath            string
}

// Builder accumulates a base Config, a per-launch root directory, and
// overrides, then produces one immutable Resolved value.
type Builder struct {
	base      *Config
	root      string
	overrides Overrides
}

// NewBuilder starts a Resolved build from base (DefaultConfig() if the
// caller has no persisted config).
func NewBuilder(base *Config) *Builder {
	if base == nil {
		base = DefaultConfig()
	}
	return &Builder{base: base}
}

// WithRoot sets the per-launch root directory (spec.md §6: "root/" is
// where versions/libraries/assets/natives/forge all live).
func (b *Builder) WithRoot(root string) *Builder {
	b.root = root
	return b
}

// WithOverrides layers the given overrides onto the base config; any zero
// field in o leaves the base's value untouched.
func (b *Builder) WithOverrides(o Overrides) *Builder {
	b.overrides = o
	return b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Build resolves every path and endpoint, applying defaults exactly once.
func (b *Builder) Build() Resolved {
	root := b.root
	if root == "" {
		root = b.base.DataDir
	}

	return Resolved{
		Root:         root,
		VersionsDir:  filepath.Join(root, "versions"),
		LibrariesDir: filepath.Join(root, "libraries"),
		AssetsDir:    filepath.Join(root, "assets"),
		NativesDir:   filepath.Join(root, "natives"),
		ForgeDir:     filepath.Join(root, "forge"),

		JavaPath: firstNonEmpty(b.overrides.JavaPath, b.base.JavaPath),

		MetaBaseURL:         firstNonEmpty(b.overrides.MetaBaseURL, b.base.MetaBaseURL, DefaultMetaBaseURL),
		ResourceBaseURL:     firstNonEmpty(b.overrides.ResourceBaseURL, b.base.ResourceBaseURL, DefaultResourceBaseURL),
		ForgeMavenURL:       firstNonEmpty(b.overrides.ForgeMavenURL, b.base.ForgeMavenURL, DefaultForgeMavenURL),
		DefaultForgeRepoURL: firstNonEmpty(b.overrides.DefaultForgeRepoURL, b.base.DefaultForgeRepoURL, DefaultDefaultForgeRepoURL),
		FallbackMavenURL:    firstNonEmpty(b.overrides.FallbackMavenURL, b.base.FallbackMavenURL, DefaultFallbackMavenURL),

		MaxSockets: firstNonZero(b.overrides.MaxSockets, b.base.MaxSockets, DefaultMaxSockets),
		MinArgs:    firstNonZero(b.overrides.MinArgs, b.base.MinArgs),
	}
}
