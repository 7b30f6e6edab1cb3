package mcversion

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/urixen-org/mclaunch/internal/rules"
)

// GameTokens flattens this descriptor's game arguments to a plain token
// list, reconciling the legacy (space-split minecraftArguments string) and
// modern (structured Arguments.Game) schemas behind one accessor. currentOS
// and active select which structured Arg entries survive their embedded
// rules — per spec.md §9 these are evaluated, not dropped.
func (v VersionDescriptor) GameTokens(currentOS string, active rules.ActiveFeatures) []string {
	if v.IsLegacy() {
		return strings.Fields(v.MinecraftArguments)
	}
	if v.Arguments == nil {
		return nil
	}

	var tokens []string
	for _, arg := range v.Arguments.Game {
		if !arg.Structured {
			tokens = append(tokens, arg.Literal)
			continue
		}
		if rules.Evaluate(arg.Conditions, currentOS, active) {
			tokens = append(tokens, arg.Values...)
		}
	}
	return tokens
}

// MinorVersion extracts the minor component of a Minecraft version id
// ("1.19.2" -> 19, "1.8" -> 8), used by the osx JVM-flag gate (spec.md
// §4.D). Release ids parse cleanly as semver; snapshot/historic ids that
// don't (e.g. "23w13a", "rd-132211") fall back to a best-effort scan of the
// second dot-separated component and yield 0 if that isn't numeric either.
func MinorVersion(id string) int {
	if v, err := semver.NewVersion(id); err == nil {
		return int(v.Minor())
	}

	parts := strings.Split(id, ".")
	if len(parts) < 2 {
		return 0
	}
	n := 0
	for _, c := range parts[1] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
