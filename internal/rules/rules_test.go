package rules

import "testing"

func TestLibraryIncludedNoRules(t *testing.T) {
	if !LibraryIncluded(nil, "linux") {
		t.Fatal("no rules should include")
	}
}

func TestLibraryIncludedSingleAllowOS(t *testing.T) {
	rs := []Rule{{Action: "allow", OS: &OS{Name: "windows"}}}
	if LibraryIncluded(rs, "osx") {
		t.Fatal("single allow+os rule should exclude on osx")
	}
	if !LibraryIncluded(rs, "linux") {
		t.Fatal("single allow+os rule should include on non-osx")
	}
	if !LibraryIncluded(rs, "windows") {
		t.Fatal("single allow+os rule should include on windows")
	}
}

func TestLibraryIncludedAllowThenDisallowOSX(t *testing.T) {
	rs := []Rule{
		{Action: "allow"},
		{Action: "disallow", OS: &OS{Name: "osx"}},
	}
	if !LibraryIncluded(rs, "osx") {
		t.Fatal("expected inclusion on osx")
	}
	if LibraryIncluded(rs, "linux") {
		t.Fatal("expected exclusion on linux")
	}
	if LibraryIncluded(rs, "windows") {
		t.Fatal("expected exclusion on windows")
	}
}

func TestLibraryIncludedUnknownShapeExcludes(t *testing.T) {
	rs := []Rule{
		{Action: "disallow", OS: &OS{Name: "windows"}},
		{Action: "allow"},
		{Action: "allow"},
	}
	if LibraryIncluded(rs, "linux") {
		t.Fatal("unrecognized shape should conservatively exclude")
	}
}

func TestEvaluateFeatureRule(t *testing.T) {
	rs := []Rule{{Action: "allow", Features: &Features{IsDemoUser: true}}}
	if Evaluate(rs, "linux", ActiveFeatures{}) {
		t.Fatal("expected exclusion when demo feature inactive")
	}
	if !Evaluate(rs, "linux", ActiveFeatures{IsDemoUser: true}) {
		t.Fatal("expected inclusion when demo feature active")
	}
}

func TestEvaluateNoRulesIncludes(t *testing.T) {
	if !Evaluate(nil, "linux", ActiveFeatures{}) {
		t.Fatal("no rules should include")
	}
}

func TestEvaluateLastMatchWins(t *testing.T) {
	rs := []Rule{
		{Action: "allow"},
		{Action: "disallow", OS: &OS{Name: "linux"}},
	}
	if Evaluate(rs, "linux", ActiveFeatures{}) {
		t.Fatal("later disallow on matching os should win")
	}
	if !Evaluate(rs, "windows", ActiveFeatures{}) {
		t.Fatal("disallow clause for linux shouldn't match on windows")
	}
}
