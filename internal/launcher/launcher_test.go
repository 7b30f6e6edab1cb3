package launcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urixen-org/mclaunch/internal/args"
	"github.com/urixen-org/mclaunch/internal/config"
	"github.com/urixen-org/mclaunch/internal/events"
)

func sha1Hex(b []byte) string {
	h := sha1.Sum(b)
	return hex.EncodeToString(h[:])
}

// writeFakeJava installs a shell script standing in for a real java
// binary: it records every argument it was called with, one per line, to
// argsFile, then exits 0. Good enough to exercise the spawn/relay path
// without needing a real JVM on the test host.
func writeFakeJava(t *testing.T, argsFile string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fakejava.sh")
	script := fmt.Sprintf("#!/bin/sh\nfor a in \"$@\"; do echo \"$a\" >> %q; done\necho launching >&1\necho warming up >&2\nexit 0\n", argsFile)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

type recordingSink struct {
	events.Discard
	arguments []string
	closed    int
	gotClose  bool
	lines     []events.LogLine
}

func (s *recordingSink) Arguments(a []string) { s.arguments = a }
func (s *recordingSink) Close(code int)       { s.closed = code; s.gotClose = true }
func (s *recordingSink) Data(l events.LogLine) { s.lines = append(s.lines, l) }

func TestLaunchEndToEndVanilla1_8_9(t *testing.T) {
	root := t.TempDir()

	clientJarBytes := []byte("fake-client-jar-bytes")
	clientSHA1 := sha1Hex(clientJarBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(clientJarBytes)
	})
	mux.HandleFunc("/assets/index.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"objects":{}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	versionID := "1.8.9"
	versionsDir := filepath.Join(root, "versions")
	versionDir := filepath.Join(versionsDir, versionID)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		t.Fatal(err)
	}
	descriptorJSON := fmt.Sprintf(`{
		"id": %q,
		"mainClass": "net.minecraft.client.main.Main",
		"assets": "1.8",
		"assetIndex": {"id": "1.8", "url": %q},
		"downloads": {"client": {"url": %q, "sha1": %q, "size": %d}},
		"libraries": [],
		"minecraftArguments": "--username ${auth_player_name} --version ${version_name} --gameDir ${game_directory} --assetsDir ${assets_root} --assetIndex ${assets_index_name} --uuid ${auth_uuid} --accessToken ${auth_access_token} --userProperties ${user_properties} --userType ${user_type}"
	}`, versionID, srv.URL+"/assets/index.json", srv.URL+"/client.jar", clientSHA1, len(clientJarBytes))

	if err := os.WriteFile(filepath.Join(versionDir, versionID+".json"), []byte(descriptorJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	argsFile := filepath.Join(root, "observed-args.txt")
	fakeJava := writeFakeJava(t, argsFile)

	resolved := config.NewBuilder(nil).
		WithRoot(root).
		WithOverrides(config.Overrides{MaxSockets: 4}).
		Build()

	sink := &recordingSink{}

	opts := Options{
		Resolved:    resolved,
		VersionID:   versionID,
		VersionType: "release",
		JavaPath:    fakeJava,
		Memory:      args.Memory{Min: 512, Max: 2048},
		Auth: args.Authorization{
			AccessToken:    "T",
			Name:           "Steve",
			UUID:           "uuid-1234",
			UserProperties: "{}",
		},
		Sink: sink,
	}

	l := New(opts)
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if !sink.gotClose || sink.closed != 0 {
		t.Fatalf("expected close(0), got close=%d gotClose=%v", sink.closed, sink.gotClose)
	}

	tokens := sink.arguments
	if len(tokens) == 0 {
		t.Fatal("expected non-empty argument list")
	}
	if tokens[0] != "-XX:-UseAdaptiveSizePolicy" {
		t.Fatalf("tokens[0] = %q, want fixed first JVM flag", tokens[0])
	}

	joined := strings.Join(tokens, " ")
	if !strings.Contains(joined, "-Xmx2048M") || !strings.Contains(joined, "-Xms512M") {
		t.Fatalf("expected memory flags in tokens: %v", tokens)
	}

	cpIdx := -1
	for i, tok := range tokens {
		if tok == "-cp" {
			cpIdx = i
			break
		}
	}
	if cpIdx == -1 || cpIdx+1 >= len(tokens) {
		t.Fatalf("expected -cp token with following classpath, got %v", tokens)
	}
	wantJar := filepath.Join(versionsDir, versionID, versionID+".jar")
	if !strings.HasSuffix(tokens[cpIdx+1], wantJar) {
		t.Fatalf("classpath %q does not end with client jar %q", tokens[cpIdx+1], wantJar)
	}

	mainClassIdx := cpIdx + 2
	if tokens[mainClassIdx] != "net.minecraft.client.main.Main" {
		t.Fatalf("main class token = %q", tokens[mainClassIdx])
	}

	if !strings.Contains(joined, "--accessToken T") {
		t.Fatalf("expected substituted access token in game args: %v", tokens)
	}
	if !strings.Contains(joined, "--username Steve") {
		t.Fatalf("expected substituted username in game args: %v", tokens)
	}
	for _, tok := range tokens {
		if strings.Contains(tok, "${") {
			t.Fatalf("unsubstituted placeholder left in tokens: %q", tok)
		}
	}

	observed, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("fake java was not invoked: %v", err)
	}
	observedLines := strings.Split(strings.TrimRight(string(observed), "\n"), "\n")
	if len(observedLines) != len(tokens) {
		t.Fatalf("fake java observed %d args, want %d", len(observedLines), len(tokens))
	}

	if len(sink.lines) == 0 {
		t.Fatal("expected relayed stdout/stderr lines")
	}
}

func TestLaunchUnresolvableVersionFails(t *testing.T) {
	root := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resolved := config.NewBuilder(nil).
		WithRoot(root).
		WithOverrides(config.Overrides{MetaBaseURL: srv.URL}).
		Build()
	sink := &recordingSink{}

	opts := Options{
		Resolved:  resolved,
		VersionID: "does-not-exist",
		JavaPath:  "/bin/true",
		Sink:      sink,
	}

	l := New(opts)
	if err := l.Launch(context.Background()); err == nil {
		t.Fatal("expected error resolving an unknown, uncached version")
	}
	if sink.gotClose {
		t.Fatalf("version resolution fails before any process spawns, expected no close event, got %d", sink.closed)
	}
}
