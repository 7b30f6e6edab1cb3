// Package ui provides TUI view messages shared between components.
package ui

import (
	"github.com/urixen-org/mclaunch/internal/core"
	"github.com/urixen-org/mclaunch/internal/mcversion"
)

// Navigation messages
type (
	// NavigateToHome returns to the home screen
	NavigateToHome struct{}

	// NavigateToNewInstance opens the new instance wizard
	NavigateToNewInstance struct{}

	// NavigateToMods is sent by the home screen's mods key; app.Model has
	// no handler for it, so no mod browser opens
	NavigateToMods struct {
		Instance *core.Instance
	}

	// NavigateToSettings is sent by the home screen's settings key; app.Model
	// has no handler for it, so no settings screen opens
	NavigateToSettings struct{}

	// NavigateToLaunch starts the launch view
	NavigateToLaunch struct {
		Instance *core.Instance
		Offline  bool
	}

	// NavigateToAuth opens the add-account screen
	NavigateToAuth struct{}

	// DeleteInstance requests instance deletion
	DeleteInstance struct {
		Instance *core.Instance
	}

	// CancelLaunch requests the in-progress launch be aborted
	CancelLaunch struct{}

	// RetryLaunch requests the failed launch be retried, optionally offline
	RetryLaunch struct {
		Offline bool
	}
)

// Action messages
type (
	// InstanceCreated is sent when a new instance is created
	InstanceCreated struct {
		Instance *core.Instance
	}

	// InstancesLoaded is sent when instances are loaded from disk
	InstancesLoaded struct {
		Instances []*core.Instance
		Error     error
	}

	// VersionsLoaded is sent when the version manifest is fetched
	VersionsLoaded struct {
		Versions []mcversion.ManifestEntry
		Latest   string
		Error    error
	}

	// AccountAdded is sent when the add-account form produces a new account
	AccountAdded struct {
		Account *core.Account
		Error   error
	}

	// LogLineInfo mirrors one relayed line of the game process's output.
	LogLineInfo struct {
		Text   string
		Stderr bool
	}

	// LaunchStatus is the TUI-facing view of one step of a launch, filled in
	// by an events.Sink adapter that translates Sink calls into this shape.
	LaunchStatus struct {
		Step     string
		Message  string
		Progress float64
		LogLine  *LogLineInfo
	}

	// LaunchStatusUpdate is sent during launch
	LaunchStatusUpdate struct {
		Status LaunchStatus
	}

	// LaunchComplete is sent when launch finishes
	LaunchComplete struct {
		Error error
	}
)
