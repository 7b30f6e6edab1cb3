package app

import (
	"testing"

	"github.com/urixen-org/mclaunch/internal/events"
	"github.com/urixen-org/mclaunch/internal/ui"
)

func TestStatusSinkTranslatesEvents(t *testing.T) {
	ch := make(chan ui.LaunchStatus, 8)
	sink := newStatusSink(ch)

	sink.DownloadStatus(events.DownloadStatus{Name: "lib.jar", Type: "classes", Current: 5, Total: 10})
	sink.Data(events.LogLine{Text: "hello", Stderr: true})
	sink.Close(0)

	got := <-ch
	if got.Step != "Downloading libraries" || got.Progress != 0.5 {
		t.Fatalf("DownloadStatus translation = %+v", got)
	}

	got = <-ch
	if got.LogLine == nil || got.LogLine.Text != "hello" || !got.LogLine.Stderr {
		t.Fatalf("Data translation = %+v", got)
	}

	got = <-ch
	if got.Step != "Playing" {
		t.Fatalf("Close translation = %+v", got)
	}
}

func TestStatusSinkSendAfterCloseDoesNotPanic(t *testing.T) {
	ch := make(chan ui.LaunchStatus)
	sink := newStatusSink(ch)
	close(ch)

	sink.Debug("late message")
}
