package mcversion

import (
	"encoding/json"
	"testing"

	"github.com/urixen-org/mclaunch/internal/rules"
)

func TestArgUnmarshalLiteral(t *testing.T) {
	var a Arg
	if err := json.Unmarshal([]byte(`"--width"`), &a); err != nil {
		t.Fatal(err)
	}
	if a.Structured || a.Literal != "--width" {
		t.Fatalf("unexpected arg: %+v", a)
	}
}

func TestArgUnmarshalStructuredSingleValue(t *testing.T) {
	var a Arg
	raw := `{"value":"--demo","rules":[{"action":"allow","features":{"is_demo_user":true}}]}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatal(err)
	}
	if !a.Structured || len(a.Values) != 1 || a.Values[0] != "--demo" {
		t.Fatalf("unexpected arg: %+v", a)
	}
	if len(a.Conditions) != 1 || !a.Conditions[0].Features.IsDemoUser {
		t.Fatalf("unexpected conditions: %+v", a.Conditions)
	}
}

func TestArgUnmarshalStructuredMultiValue(t *testing.T) {
	var a Arg
	raw := `{"value":["--width","${resolution_width}"],"rules":[{"action":"allow","features":{"has_custom_resolution":true}}]}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatal(err)
	}
	if len(a.Values) != 2 {
		t.Fatalf("unexpected values: %+v", a.Values)
	}
}

func TestGameTokensLegacy(t *testing.T) {
	v := VersionDescriptor{MinecraftArguments: "--username ${auth_player_name} --version ${version_name}"}
	tokens := v.GameTokens("linux", rules.ActiveFeatures{})
	want := []string{"--username", "${auth_player_name}", "--version", "${version_name}"}
	if len(tokens) != len(want) {
		t.Fatalf("got %v", tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: got %q want %q", i, tokens[i], want[i])
		}
	}
}

func TestGameTokensModernSkipsFalseStructured(t *testing.T) {
	v := VersionDescriptor{
		Arguments: &Arguments{
			Game: []Arg{
				{Literal: "--username"},
				{Literal: "${auth_player_name}"},
				{Structured: true, Values: []string{"--demo"}, Conditions: []rules.Rule{{Action: "allow", Features: &rules.Features{IsDemoUser: true}}}},
			},
		},
	}
	tokens := v.GameTokens("linux", rules.ActiveFeatures{})
	if len(tokens) != 2 {
		t.Fatalf("expected structured arg dropped, got %v", tokens)
	}

	tokens = v.GameTokens("linux", rules.ActiveFeatures{IsDemoUser: true})
	if len(tokens) != 3 || tokens[2] != "--demo" {
		t.Fatalf("expected structured arg included, got %v", tokens)
	}
}

func TestMinorVersion(t *testing.T) {
	cases := map[string]int{
		"1.19.2": 19,
		"1.8":    8,
		"1.7.10": 7,
		"23w13a": 0,
	}
	for id, want := range cases {
		if got := MinorVersion(id); got != want {
			t.Errorf("MinorVersion(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestIsLegacyAssets(t *testing.T) {
	if !(VersionDescriptor{Assets: "legacy"}).IsLegacyAssets() {
		t.Fatal("expected legacy")
	}
	if !(VersionDescriptor{Assets: "pre-1.6"}).IsLegacyAssets() {
		t.Fatal("expected legacy")
	}
	if (VersionDescriptor{Assets: "8"}).IsLegacyAssets() {
		t.Fatal("expected non-legacy")
	}
}
