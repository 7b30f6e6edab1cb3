package app

import (
	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/ui"
)

// statusSink adapts events.Sink onto a channel of ui.LaunchStatus messages,
// so the launch pipeline (which knows nothing about Bubbletea) can still
// drive the TUI's progress view. One statusSink is used per launch.
type statusSink struct {
	ch chan ui.LaunchStatus
}

func newStatusSink(ch chan ui.LaunchStatus) *statusSink {
	return &statusSink{ch: ch}
}

var _ events.Sink = (*statusSink)(nil)

func (s *statusSink) send(st ui.LaunchStatus) {
	defer func() { recover() }() // channel may already be closed by the caller
	s.ch <- st
}

func (s *statusSink) Debug(msg string) {
	s.send(ui.LaunchStatus{Step: "Preparing game", Message: msg})
}

func (s *statusSink) DownloadStatus(d events.DownloadStatus) {
	var progress float64
	if d.Total > 0 {
		progress = float64(d.Current) / float64(d.Total)
	}
	s.send(ui.LaunchStatus{Step: stepForTag(d.Type), Message: d.Name, Progress: progress})
}

func (s *statusSink) Download(name string) {
	s.send(ui.LaunchStatus{Step: "Preparing game", Message: "downloading " + name})
}

func (s *statusSink) Progress(p events.Progress) {
	s.send(ui.LaunchStatus{Step: stepForTag(p.Type), Message: p.Task})
}

func (s *statusSink) Arguments(args []string) {
	s.send(ui.LaunchStatus{Step: "Launching", Message: "starting game process"})
}

func (s *statusSink) Data(line events.LogLine) {
	logLine := ui.LogLineInfo{Text: line.Text, Stderr: line.Stderr}
	s.send(ui.LaunchStatus{Step: "Playing", LogLine: &logLine})
}

func (s *statusSink) Close(exitCode int) {
	s.send(ui.LaunchStatus{Step: "Playing", Message: "game process exited"})
}

func (s *statusSink) PackageExtract(ok bool) {
	s.send(ui.LaunchStatus{Step: "Preparing game", Message: "extracted client package"})
}

// stepForTag maps an events tag (spec.md §6's per-download-type "type"
// field) onto the coarse step names LaunchModel's step list understands.
func stepForTag(tag string) string {
	switch tag {
	case "natives", "classes-natives":
		return "Downloading libraries"
	case "classes":
		return "Downloading libraries"
	case "assets", "assets-copy":
		return "Downloading assets"
	case "java-runtime":
		return "Downloading Java"
	default:
		return "Preparing game"
	}
}
