// Package launcher implements the Launcher component (spec.md §4.L): the
// top-level orchestrator that strings every other component together into
// one suspending "launch" operation. Grounded on the teacher's
// internal/launch.Launcher — the named-step loop in Launch, the Java
// resolution fallback chain in checkJava, and the stdout/stderr relay in
// launchGame/streamLog all carry over, generalized from mctui's
// vanilla-only pipeline to the full resolve/materialize/overlay/synthesize
// sequence spec.md §4.L describes.
package launcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urixen-org/mclaunch/internal/archive"
	"github.com/urixen-org/mclaunch/internal/args"
	"github.com/urixen-org/mclaunch/internal/assets"
	"github.com/urixen-org/mclaunch/internal/config"
	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/fetch"
	"github.com/urixen-org/mclaunch/internal/forge"
	"github.com/urixen-org/mclaunch/internal/library"
	"github.com/urixen-org/mclaunch/internal/mcversion"
	"github.com/urixen-org/mclaunch/internal/natives"
	"github.com/urixen-org/mclaunch/internal/platform"
)

// ForgeRequest selects which Forge overlay mode to run, mirroring
// spec.md's mutually exclusive `forge`/`installer` options.
type ForgeRequest struct {
	LegacyUniversalURL string // set: legacy universal-jar path
	InstallerURL       string // set: modern installer path
	ForgeVersion       string // required alongside InstallerURL
}

// ClientPackage is spec.md §4.L step 4: an optional zip mirrored into
// root before the rest of the pipeline runs.
type ClientPackage struct {
	URL           string // fetched first when non-empty
	LocalPath     string // used as-is when URL is empty
	RemoveAfter   bool
}

// Options is everything one Launch call needs, analogous to the teacher's
// launch.Options but built from a resolved config instead of a shared
// mutable *config.Config.
type Options struct {
	Resolved      config.Resolved
	VersionID     string
	VersionType   string
	VersionOverridePath string // explicit descriptor path, bypassing resolve

	ClientPackage *ClientPackage
	Forge         *ForgeRequest
	CreateLauncherProfilesStub bool

	Auth             args.Authorization
	Memory           args.Memory
	CustomArgs       []string
	CustomLaunchArgs []string
	Window           *args.Window
	Server           *args.Server
	Proxy            *args.Proxy

	// JavaPath overrides Java resolution entirely when set.
	JavaPath string

	Sink events.Sink
}

// Launcher orchestrates one full launch.
type Launcher struct {
	opts Options
	sink events.Sink
	plat *platform.Overridable
}

// New creates a Launcher for opts, defaulting to events.Discard and the
// current platform when unset.
func New(opts Options) *Launcher {
	sink := opts.Sink
	if sink == nil {
		sink = events.Discard{}
	}
	return &Launcher{opts: opts, sink: sink, plat: platform.New()}
}

// Launch runs the pipeline described in spec.md §4.L and spawns the
// child process, returning once it exits. The child's stdout/stderr are
// relayed via events.Data as it runs; events.Close carries its exit code.
func (l *Launcher) Launch(ctx context.Context) error {
	r := l.opts.Resolved

	if err := os.MkdirAll(r.Root, 0o755); err != nil {
		return fmt.Errorf("creating root %s: %w", r.Root, err)
	}

	javaPath, err := l.resolveJava(ctx)
	if err != nil {
		l.sink.Close(1)
		return fmt.Errorf("%w: %v", ErrJavaUnavailable, err)
	}

	if l.opts.ClientPackage != nil {
		if err := l.installClientPackage(ctx); err != nil {
			return fmt.Errorf("installing client package: %w", err)
		}
	}

	if l.opts.CreateLauncherProfilesStub || l.opts.Forge != nil {
		if err := ensureLauncherProfilesStub(r.Root); err != nil {
			return fmt.Errorf("creating launcher_profiles.json: %w", err)
		}
	}

	resolver := mcversion.NewResolver(r.MetaBaseURL)
	resolved, err := resolver.Resolve(ctx, r.VersionsDir, l.opts.VersionID, l.opts.VersionOverridePath)
	if err != nil {
		return fmt.Errorf("resolving version %s: %w", l.opts.VersionID, err)
	}
	descriptor := resolved.Descriptor

	client := fetch.New(r.MaxSockets, l.sink)

	nativesDir := filepath.Join(r.NativesDir, descriptor.ID)
	nativeMat := natives.New(client, nativesDir, l.sink)
	if err := nativeMat.Materialize(ctx, descriptor, l.plat.OS()); err != nil {
		return fmt.Errorf("materializing natives: %w", err)
	}

	clientJarPath, err := l.ensureClientJar(ctx, client, descriptor)
	if err != nil {
		return err
	}
	if err := mcversion.Persist(r.VersionsDir, descriptor.ID, resolved.Raw); err != nil {
		return fmt.Errorf("persisting version descriptor %s: %w", descriptor.ID, err)
	}

	libMat := library.New(client, r.LibrariesDir, r.DefaultForgeRepoURL, l.sink)
	libEntries, err := libMat.Resolve(ctx, descriptor, l.plat.OS())
	if err != nil {
		return fmt.Errorf("materializing libraries: %w", err)
	}

	var overlay forge.Overlay
	if l.opts.Forge != nil {
		overlay, err = l.runForgeOverlay(ctx, client, descriptor, javaPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInstallerFailed, err)
		}
	}

	assetMat := assets.New(client, r.AssetsDir, r.ResourceBaseURL, l.sink)
	if err := assetMat.Materialize(ctx, descriptor); err != nil {
		return fmt.Errorf("materializing assets: %w", err)
	}

	gameDir := r.Root
	assetsRoot := r.AssetsDir
	if descriptor.IsLegacyAssets() {
		assetsRoot = filepath.Join(r.AssetsDir, "legacy")
	}

	params := args.Params{
		Vanilla:        descriptor,
		VersionType:    l.opts.VersionType,
		Overlay:        overlay,
		ClientJarPath:  clientJarPath,
		LibraryEntries: libEntries,
		NativesDir:     nativesDir,
		GameDirectory:  gameDir,
		AssetsRoot:     assetsRoot,
		Memory:         l.opts.Memory,
		CustomArgs:       l.opts.CustomArgs,
		CustomLaunchArgs: l.opts.CustomLaunchArgs,
		Auth:           l.opts.Auth,
		Window:         l.opts.Window,
		Server:         l.opts.Server,
		Proxy:          l.opts.Proxy,
		MinArgsOverride: r.MinArgs,
		CurrentOS:      l.plat.OS(),
		ExtraPlatformJVMFlag: l.plat.ExtraJVMFlag(mcversion.MinorVersion(descriptor.ID)),
		PathSeparator:  l.plat.PathSeparator(),
	}

	tokens := params.Tokens()
	l.sink.Arguments(tokens)

	exitCode, err := l.spawn(ctx, javaPath, gameDir, tokens)
	l.sink.Close(exitCode)
	if err != nil {
		return fmt.Errorf("running game: %w", err)
	}

	if l.opts.ClientPackage != nil && l.opts.ClientPackage.RemoveAfter {
		os.Remove(l.opts.ClientPackage.LocalPath)
	}

	return nil
}

func (l *Launcher) ensureClientJar(ctx context.Context, client *fetch.Client, descriptor mcversion.VersionDescriptor) (string, error) {
	if descriptor.Downloads.Client == nil {
		return "", fmt.Errorf("version %s has no client jar", descriptor.ID)
	}
	path := filepath.Join(l.opts.Resolved.VersionsDir, descriptor.ID, descriptor.ID+".jar")

	if !fetch.MatchesSHA1(path, descriptor.Downloads.Client.SHA1) {
		res := client.Fetch(ctx, descriptor.Downloads.Client.URL, filepath.Dir(path), filepath.Base(path), true, "classes")
		if res.Err != nil {
			return "", fmt.Errorf("%w: %v", ErrFetchFailed, res.Err)
		}
		if !fetch.MatchesSHA1(path, descriptor.Downloads.Client.SHA1) {
			return "", fmt.Errorf("%w: client jar for %s", ErrHashMismatch, descriptor.ID)
		}
	}

	return path, nil
}

func (l *Launcher) runForgeOverlay(ctx context.Context, client *fetch.Client, descriptor mcversion.VersionDescriptor, javaPath string) (forge.Overlay, error) {
	r := l.opts.Resolved
	installer := forge.New(client, r.LibrariesDir, r.ForgeDir, r.ForgeMavenURL, javaPath, l.sink)

	req := l.opts.Forge
	if req.LegacyUniversalURL != "" {
		return installer.InstallLegacy(ctx, req.LegacyUniversalURL, l.plat.OS())
	}
	return installer.InstallModern(ctx, req.InstallerURL, descriptor.ID, req.ForgeVersion, l.plat.OS(), r.Root)
}

func (l *Launcher) installClientPackage(ctx context.Context) error {
	pkg := l.opts.ClientPackage
	path := pkg.LocalPath

	if pkg.URL != "" {
		client := fetch.New(l.opts.Resolved.MaxSockets, l.sink)
		destDir := l.opts.Resolved.Root
		filename := filepath.Base(pkg.URL)
		res := client.Fetch(ctx, pkg.URL, destDir, filename, true, "package")
		if res.Err != nil {
			return fmt.Errorf("%w: %v", ErrFetchFailed, res.Err)
		}
		path = filepath.Join(destDir, filename)
		pkg.LocalPath = path
	}

	if err := archive.Extract(path, l.opts.Resolved.Root, true, func(msg string) { l.sink.Debug(msg) }); err != nil {
		return err
	}
	l.sink.PackageExtract(true)
	return nil
}

func ensureLauncherProfilesStub(root string) error {
	path := filepath.Join(root, "launcher_profiles.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte("{}"), 0o644)
}

func (l *Launcher) spawn(ctx context.Context, javaPath, workDir string, tokens []string) (int, error) {
	cmd := exec.CommandContext(ctx, javaPath, tokens...)
	cmd.Dir = workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	go l.relay(stdout, false)
	go l.relay(stderr, true)

	err = cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (l *Launcher) relay(r io.Reader, stderr bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l.sink.Data(events.LogLine{Text: scanner.Text(), Stderr: stderr})
	}
}
