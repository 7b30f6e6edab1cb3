// Package args implements the Argument synthesizer component (spec.md
// §4.K): assembling the JVM flag list, classpath, main class, and game
// argument list — with full placeholder substitution — that the launcher
// hands to the child process. Grounded on the teacher's
// internal/launch/launcher.go buildArguments/buildGameArguments/
// replaceVars, generalized to cover the Forge/custom overlay composition
// and the structured-argument rule evaluation the teacher's "Complex
// rules - skip for now" comment left undone.
package args

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urixen-org/mclaunch/internal/forge"
	"github.com/urixen-org/mclaunch/internal/library"
	"github.com/urixen-org/mclaunch/internal/mcversion"
	"github.com/urixen-org/mclaunch/internal/rules"
)

// Authorization is the pre-resolved credential bundle a caller supplies;
// acquiring it (the MSA/Xbox exchange) is explicitly out of scope.
type Authorization struct {
	AccessToken    string
	Name           string
	UUID           string
	UserProperties string
}

// Memory is the heap size bound in megabytes.
type Memory struct {
	Min, Max int
}

// Window is the optional display-size override.
type Window struct {
	Fullscreen bool
	Width      int
	Height     int
}

// Server is an optional "connect directly" target.
type Server struct {
	Host string
	Port int
}

// Proxy is an optional SOCKS/HTTP proxy the game should route through.
type Proxy struct {
	Host string
	Port int
	User string
	Pass string
}

// Params is everything the synthesizer needs, already resolved by earlier
// pipeline phases: vanilla descriptor, optional Forge/custom overlay,
// materialized classpath entries, and launch options.
type Params struct {
	Vanilla       mcversion.VersionDescriptor
	VersionType   string // "release"/"snapshot"/"old_beta"/... from the manifest entry, not version.json
	Overlay       forge.Overlay // zero value: no modification, vanilla classpath+mainclass+args
	ClientJarPath string
	LibraryEntries []library.Entry // deduplicated, in materialization order
	NativesDir    string
	GameDirectory string
	AssetsRoot    string

	Memory    Memory
	CustomArgs       []string
	CustomLaunchArgs []string
	Auth      Authorization
	Window    *Window
	Server    *Server
	Proxy     *Proxy

	MinArgsOverride int
	CurrentOS       string
	ExtraPlatformJVMFlag string
	PathSeparator   string
	ActiveFeatures  rules.ActiveFeatures
}

// dedup removes repeated classpath entries by path, keeping first
// occurrence order (spec.md §8 property 2: "the classpath passed to -cp
// contains no duplicate entries").
func dedup(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Classpath assembles the -cp string: overlay library entries first (which
// for a legacy Forge overlay already begin with the forge jar itself),
// then vanilla library entries, then the client jar — deduplicated.
func (p Params) Classpath() string {
	var paths []string
	for _, e := range p.Overlay.LibraryEntries {
		paths = append(paths, e.Path)
	}
	for _, e := range p.LibraryEntries {
		paths = append(paths, e.Path)
	}
	paths = append(paths, p.ClientJarPath)
	return strings.Join(dedup(paths), p.PathSeparator)
}

// MainClass resolves per spec.md §4.K step 5: the overlay's main class
// when present, else vanilla's.
func (p Params) MainClass() string {
	if p.Overlay.MainClassOverride != "" {
		return p.Overlay.MainClassOverride
	}
	return p.Vanilla.MainClass
}

// JVMTokens builds the JVM argument list (spec.md §4.K steps 1-5).
func (p Params) JVMTokens() []string {
	tokens := []string{
		"-XX:-UseAdaptiveSizePolicy",
		"-XX:-OmitStackTraceInFastThrow",
		"-Dfml.ignorePatchDiscrepancies=true",
		"-Dfml.ignoreInvalidMinecraftCertificates=true",
		fmt.Sprintf("-Djava.library.path=%s", p.NativesDir),
		fmt.Sprintf("-Xmx%dM", p.Memory.Max),
		fmt.Sprintf("-Xms%dM", p.Memory.Min),
	}

	if p.ExtraPlatformJVMFlag != "" {
		tokens = append(tokens, p.ExtraPlatformJVMFlag)
	}

	tokens = append(tokens, p.CustomArgs...)
	tokens = append(tokens, "-cp", p.Classpath())
	tokens = append(tokens, p.MainClass())

	return tokens
}

// minArgsThreshold resolves the below-threshold fallback size (spec.md
// §4.K / Design Notes: explicit if/else, not an ambiguous expression).
func (p Params) minArgsThreshold() int {
	if p.MinArgsOverride != 0 {
		return p.MinArgsOverride
	}
	if p.Vanilla.IsLegacyAssets() {
		return 5
	}
	return 11
}

// GameTokens builds the game argument list: the overlay descriptor's
// tokens when it has one, falling back to (or padding out with) vanilla's
// once the overlay's own token count is below the resolved threshold, then
// appending conditional window/server/proxy/customLaunchArgs tokens and
// substituting every recognized placeholder.
func (p Params) GameTokens() []string {
	var tokens []string
	if p.Overlay.Descriptor != nil {
		tokens = p.Overlay.Descriptor.GameTokens(p.CurrentOS, p.ActiveFeatures)
	}
	if len(tokens) < p.minArgsThreshold() {
		tokens = append(tokens, p.Vanilla.GameTokens(p.CurrentOS, p.ActiveFeatures)...)
	}

	for i, t := range tokens {
		tokens[i] = p.substitute(t)
	}

	if p.Window != nil {
		if p.Window.Fullscreen {
			tokens = append(tokens, "--fullscreen")
		} else if p.Window.Width > 0 && p.Window.Height > 0 {
			tokens = append(tokens, "--width", strconv.Itoa(p.Window.Width), "--height", strconv.Itoa(p.Window.Height))
		}
	}

	if p.Server != nil && p.Server.Host != "" {
		port := p.Server.Port
		if port == 0 {
			port = 25565
		}
		tokens = append(tokens, "--server", p.Server.Host, "--port", strconv.Itoa(port))
	}

	if p.Proxy != nil && p.Proxy.Host != "" {
		tokens = append(tokens, "--proxyHost", p.Proxy.Host, "--proxyPort", strconv.Itoa(p.Proxy.Port))
		if p.Proxy.User != "" {
			tokens = append(tokens, "--proxyUser", p.Proxy.User, "--proxyPass", p.Proxy.Pass)
		}
	}

	tokens = append(tokens, p.CustomLaunchArgs...)

	return tokens
}

func (p Params) substitute(token string) string {
	replacements := map[string]string{
		"${auth_access_token}": p.Auth.AccessToken,
		"${auth_session}":      p.Auth.AccessToken,
		"${auth_player_name}":  p.Auth.Name,
		"${auth_uuid}":         p.Auth.UUID,
		"${user_properties}":   p.Auth.UserProperties,
		"${user_type}":         "mojang",
		"${version_name}":      p.Vanilla.ID,
		"${version_type}":      p.VersionType,
		"${assets_index_name}": p.Vanilla.AssetIndex.ID,
		"${game_directory}":    p.GameDirectory,
		"${assets_root}":       p.AssetsRoot,
		"${game_assets}":       p.AssetsRoot,
	}

	for k, v := range replacements {
		token = strings.ReplaceAll(token, k, v)
	}
	return token
}

// Tokens is the full JVM+game argument list in spawn order.
func (p Params) Tokens() []string {
	tokens := p.JVMTokens()
	tokens = append(tokens, p.GameTokens()...)
	return tokens
}
