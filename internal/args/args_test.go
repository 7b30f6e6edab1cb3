package args

import (
	"strings"
	"testing"

	"github.com/urixen-org/mclaunch/internal/forge"
	"github.com/urixen-org/mclaunch/internal/library"
	"github.com/urixen-org/mclaunch/internal/mcversion"
)

func baseParams() Params {
	return Params{
		Vanilla: mcversion.VersionDescriptor{
			ID:        "1.8.9",
			MainClass: "net.minecraft.client.main.Main",
			Arguments: nil,
			MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --accessToken ${auth_access_token} --uuid ${auth_uuid} --userProperties ${user_properties} --userType ${user_type} --assetsDir ${assets_root} --assetIndex ${assets_index_name} --gameDir ${game_directory}",
		},
		VersionType:   "release",
		ClientJarPath: "/tmp/mc/versions/1.8.9/1.8.9.jar",
		NativesDir:    "/tmp/mc/natives/1.8.9",
		GameDirectory: "/tmp/mc",
		AssetsRoot:    "/tmp/mc/assets",
		Memory:        Memory{Min: 512, Max: 2048},
		Auth: Authorization{
			AccessToken:    "T",
			Name:           "Steve",
			UUID:           "U",
			UserProperties: "{}",
		},
		CurrentOS:     "linux",
		PathSeparator: ":",
	}
}

func TestJVMTokensOrderAndFixedFlags(t *testing.T) {
	p := baseParams()
	tokens := p.JVMTokens()
	if tokens[0] != "-XX:-UseAdaptiveSizePolicy" {
		t.Fatalf("expected first JVM flag fixed, got %q", tokens[0])
	}
	if tokens[len(tokens)-1] != "net.minecraft.client.main.Main" {
		t.Fatalf("expected main class last, got %q", tokens[len(tokens)-1])
	}
	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "-Xmx2048M") || !strings.Contains(joined, "-Xms512M") {
		t.Fatalf("expected memory flags, got %v", tokens)
	}
}

func TestClasspathEndsWithClientJarAndDedups(t *testing.T) {
	p := baseParams()
	p.LibraryEntries = []library.Entry{
		{Path: "/libs/a.jar"},
		{Path: "/libs/a.jar"},
		{Path: "/libs/b.jar"},
	}
	cp := p.Classpath()
	if !strings.HasSuffix(cp, "/tmp/mc/versions/1.8.9/1.8.9.jar") {
		t.Fatalf("expected classpath to end with client jar, got %q", cp)
	}
	if strings.Count(cp, "/libs/a.jar") != 1 {
		t.Fatalf("expected deduplicated classpath, got %q", cp)
	}
}

func TestGameTokensSubstitutesPlaceholders(t *testing.T) {
	p := baseParams()
	tokens := p.GameTokens()
	joined := strings.Join(tokens, " ")
	if strings.Contains(joined, "${") {
		t.Fatalf("expected no unsubstituted placeholders, got %v", tokens)
	}
	if !strings.Contains(joined, "--accessToken T") || !strings.Contains(joined, "--username Steve") {
		t.Fatalf("expected substituted auth fields, got %v", tokens)
	}
}

func TestGameTokensAppendsVanillaBelowThreshold(t *testing.T) {
	p := baseParams()
	p.Overlay = forge.Overlay{
		Descriptor: &mcversion.VersionDescriptor{MinecraftArguments: "--demo"},
	}
	tokens := p.GameTokens()
	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "--demo") {
		t.Fatalf("expected overlay tokens present, got %v", tokens)
	}
	if !strings.Contains(joined, "--username Steve") {
		t.Fatalf("expected vanilla tokens appended below threshold, got %v", tokens)
	}
}

func TestGameTokensWindowServerProxyAndCustomLaunchArgs(t *testing.T) {
	p := baseParams()
	p.Window = &Window{Width: 1920, Height: 1080}
	p.Server = &Server{Host: "mc.example.com"}
	p.Proxy = &Proxy{Host: "proxy.example.com", Port: 1080, User: "u", Pass: "pw"}
	p.CustomLaunchArgs = []string{"--extra", "flag"}

	tokens := p.GameTokens()
	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "--width 1920 --height 1080") {
		t.Fatalf("expected window args, got %v", tokens)
	}
	if !strings.Contains(joined, "--server mc.example.com --port 25565") {
		t.Fatalf("expected default port 25565, got %v", tokens)
	}
	if !strings.Contains(joined, "--proxyHost proxy.example.com --proxyPort 1080") {
		t.Fatalf("expected proxy args, got %v", tokens)
	}
	if !strings.HasSuffix(joined, "--extra flag") {
		t.Fatalf("expected customLaunchArgs last, got %v", tokens)
	}
}

func TestMinArgsThresholdLegacyAssets(t *testing.T) {
	p := baseParams()
	p.Vanilla.Assets = "legacy"
	if got := p.minArgsThreshold(); got != 5 {
		t.Fatalf("minArgsThreshold = %d, want 5", got)
	}

	p.Vanilla.Assets = "8"
	if got := p.minArgsThreshold(); got != 11 {
		t.Fatalf("minArgsThreshold = %d, want 11", got)
	}

	p.MinArgsOverride = 3
	if got := p.minArgsThreshold(); got != 3 {
		t.Fatalf("minArgsThreshold = %d, want override 3", got)
	}
}

func TestMainClassPrefersOverlay(t *testing.T) {
	p := baseParams()
	if p.MainClass() != "net.minecraft.client.main.Main" {
		t.Fatalf("expected vanilla main class, got %q", p.MainClass())
	}
	p.Overlay = forge.Overlay{MainClassOverride: "net.minecraftforge.legacy.LegacyLauncher"}
	if p.MainClass() != "net.minecraftforge.legacy.LegacyLauncher" {
		t.Fatalf("expected overlay main class, got %q", p.MainClass())
	}
}
