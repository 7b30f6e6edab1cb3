// Package mcversion implements the VersionDescriptor data model (spec.md
// §3) and the Version resolver component (spec.md §4.E): loading a
// descriptor from disk or Mojang's two-stage manifest lookup.
package mcversion

import (
	"encoding/json"
	"fmt"

	"github.com/urixen-org/mclaunch/internal/rules"
)

// Artifact is a single downloadable file reference: {path, url, sha1, size}.
type Artifact struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// LibraryDownloads holds a library's main artifact and OS-classifier map.
type LibraryDownloads struct {
	Artifact    *Artifact            `json:"artifact,omitempty"`
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

// ruleJSON mirrors the on-wire rule shape before conversion to rules.Rule.
type ruleJSON struct {
	Action string `json:"action"`
	OS     *struct {
		Name    string `json:"name,omitempty"`
		Version string `json:"version,omitempty"`
		Arch    string `json:"arch,omitempty"`
	} `json:"os,omitempty"`
	Features *struct {
		IsDemoUser              bool `json:"is_demo_user,omitempty"`
		HasCustomResolution     bool `json:"has_custom_resolution,omitempty"`
		HasQuickPlaysSupport    bool `json:"has_quick_plays_support,omitempty"`
		IsQuickPlaySingleplayer bool `json:"is_quick_play_singleplayer,omitempty"`
		IsQuickPlayMultiplayer  bool `json:"is_quick_play_multiplayer,omitempty"`
		IsQuickPlayRealms       bool `json:"is_quick_play_realms,omitempty"`
	} `json:"features,omitempty"`
}

func (rj ruleJSON) toRule() rules.Rule {
	r := rules.Rule{Action: rj.Action}
	if rj.OS != nil {
		r.OS = &rules.OS{Name: rj.OS.Name, Version: rj.OS.Version, Arch: rj.OS.Arch}
	}
	if rj.Features != nil {
		r.Features = &rules.Features{
			IsDemoUser:              rj.Features.IsDemoUser,
			HasCustomResolution:     rj.Features.HasCustomResolution,
			HasQuickPlaysSupport:    rj.Features.HasQuickPlaysSupport,
			IsQuickPlaySingleplayer: rj.Features.IsQuickPlaySingleplayer,
			IsQuickPlayMultiplayer:  rj.Features.IsQuickPlayMultiplayer,
			IsQuickPlayRealms:       rj.Features.IsQuickPlayRealms,
		}
	}
	return r
}

func toRules(rjs []ruleJSON) []rules.Rule {
	if len(rjs) == 0 {
		return nil
	}
	out := make([]rules.Rule, len(rjs))
	for i, rj := range rjs {
		out[i] = rj.toRule()
	}
	return out
}

// Library is one classpath or native contribution.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	RulesRaw  []ruleJSON        `json:"rules,omitempty"`
	URL       string            `json:"url,omitempty"`
}

// Rules returns the library's inclusion rules in the package-neutral form
// the rules package consumes.
func (l Library) Rules() []rules.Rule { return toRules(l.RulesRaw) }

// Arg is either a literal string token or a structured {value, rules}
// entry, included only when its rules evaluate true (spec.md §3, §9:
// structured Arg entries must be rule-evaluated, not silently dropped).
type Arg struct {
	Literal      string
	Structured   bool
	Values       []string
	Conditions   []rules.Rule
}

// UnmarshalJSON implements the tagged-variant decode: a bare JSON string is
// a literal; an object is {value: string|[]string, rules: [...]}.
func (a *Arg) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Literal = s
		a.Structured = false
		return nil
	}

	var obj struct {
		Value json.RawMessage `json:"value"`
		Rules []ruleJSON      `json:"rules"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding argument: %w", err)
	}

	a.Structured = true
	a.Conditions = toRules(obj.Rules)

	var single string
	if err := json.Unmarshal(obj.Value, &single); err == nil {
		a.Values = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(obj.Value, &many); err != nil {
		return fmt.Errorf("decoding argument value: %w", err)
	}
	a.Values = many
	return nil
}

// Arguments holds the modern structured game/jvm argument lists.
type Arguments struct {
	Game []Arg `json:"game,omitempty"`
	JVM  []Arg `json:"jvm,omitempty"`
}

// AssetIndexRef points at the asset-index JSON document.
type AssetIndexRef struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Downloads holds the client/server jar references.
type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

// VersionDescriptor is the authoritative recipe for one Minecraft version
// (spec.md §3). It reconciles the legacy single-string-argument manifest
// schema with the modern structured-argument schema behind a single
// GameTokens() accessor (Design Notes: "naturally a tagged variant with a
// common gameTokens() -> []string accessor").
type VersionDescriptor struct {
	ID                 string        `json:"id"`
	MainClass          string        `json:"mainClass"`
	Assets             string        `json:"assets"`
	AssetIndex         AssetIndexRef `json:"assetIndex"`
	Downloads          Downloads     `json:"downloads"`
	Libraries          []Library     `json:"libraries"`
	Arguments          *Arguments    `json:"arguments,omitempty"`
	MinecraftArguments string        `json:"minecraftArguments,omitempty"`
}

// IsLegacy reports whether this descriptor uses the pre-1.6 flat
// minecraftArguments string instead of structured Arguments.
func (v VersionDescriptor) IsLegacy() bool {
	return v.Arguments == nil && v.MinecraftArguments != ""
}

// IsLegacyAssets reports whether the asset layout for this version is the
// pre-modern "legacy"/"pre-1.6" one requiring the assets/legacy mirror.
func (v VersionDescriptor) IsLegacyAssets() bool {
	return v.Assets == "legacy" || v.Assets == "pre-1.6"
}
