// Package rules implements the Rule evaluator component (spec.md §4.F): the
// small set of OS-conditional predicate shapes Mojang's version manifests
// actually use, plus a general evaluator for the feature/os rules attached
// to structured argument tokens.
package rules

// OS is the optional OS clause on a Rule.
type OS struct {
	Name    string
	Version string
	Arch    string
}

// Features is the optional feature-flag clause on a Rule, used by
// structured game arguments (demo mode, custom resolution, quick play, ...).
type Features struct {
	IsDemoUser        bool
	HasCustomResolution bool
	HasQuickPlaysSupport bool
	IsQuickPlaySingleplayer bool
	IsQuickPlayMultiplayer  bool
	IsQuickPlayRealms       bool
}

// Rule is one allow/disallow predicate.
type Rule struct {
	Action   string // "allow" or "disallow"
	OS       *OS
	Features *Features
}

// ActiveFeatures describes which optional features are enabled for the
// current launch, consulted by structured-argument rule evaluation.
type ActiveFeatures struct {
	IsDemoUser              bool
	HasCustomResolution     bool
	HasQuickPlaysSupport    bool
	IsQuickPlaySingleplayer bool
	IsQuickPlayMultiplayer  bool
	IsQuickPlayRealms       bool
}

// LibraryIncluded implements the exact narrow evaluator spec.md §4.F
// describes for library rules — the only shapes found in the wild:
//
//   - no rules:                                    include
//   - one rule, allow with an os clause:            include iff currentOS != "osx"
//   - two rules, allow then disallow os.name=="osx": include iff currentOS == "osx"
//   - anything else:                                conservatively exclude
func LibraryIncluded(rs []Rule, currentOS string) bool {
	switch len(rs) {
	case 0:
		return true

	case 1:
		r := rs[0]
		if r.Action == "allow" && r.OS != nil {
			return currentOS != "osx"
		}
		return false

	case 2:
		first, second := rs[0], rs[1]
		if first.Action == "allow" && first.OS == nil &&
			second.Action == "disallow" && second.OS != nil && second.OS.Name == "osx" {
			return currentOS == "osx"
		}
		return false

	default:
		return false
	}
}

// Evaluate is the general iterative evaluator used for structured argument
// rules (spec.md §4, Arg type): rules are applied in order, the last
// matching rule's action wins, and the default (no matching rule at all)
// is exclude. An empty rule list includes. A rule matches when every clause it specifies (os, features)
// is satisfied by the current context.
func Evaluate(rs []Rule, currentOS string, active ActiveFeatures) bool {
	if len(rs) == 0 {
		return true
	}

	included := false
	matchedAny := false

	for _, r := range rs {
		if !clauseMatches(r, currentOS, active) {
			continue
		}
		matchedAny = true
		included = r.Action == "allow"
	}

	if !matchedAny {
		return false
	}
	return included
}

func clauseMatches(r Rule, currentOS string, active ActiveFeatures) bool {
	if r.OS != nil && r.OS.Name != "" && r.OS.Name != currentOS {
		return false
	}
	if r.Features != nil {
		f := r.Features
		if f.IsDemoUser && !active.IsDemoUser {
			return false
		}
		if f.HasCustomResolution && !active.HasCustomResolution {
			return false
		}
		if f.HasQuickPlaysSupport && !active.HasQuickPlaysSupport {
			return false
		}
		if f.IsQuickPlaySingleplayer && !active.IsQuickPlaySingleplayer {
			return false
		}
		if f.IsQuickPlayMultiplayer && !active.IsQuickPlayMultiplayer {
			return false
		}
		if f.IsQuickPlayRealms && !active.IsQuickPlayRealms {
			return false
		}
	}
	return true
}
