package events

// Kind tags which field of Event is populated.
type Kind int

const (
	KindDebug Kind = iota
	KindDownloadStatus
	KindDownload
	KindProgress
	KindArguments
	KindData
	KindClose
	KindPackageExtract
)

// Event is a tagged union of every Sink call, suitable for passing over a
// channel to a frontend loop (bubbletea's Update, a CLI progress bar, ...).
// This mirrors the teacher's launch.Status shape but carries the full
// spec.md event vocabulary instead of a single ad-hoc struct.
type Event struct {
	Kind           Kind
	Debug          string
	DownloadStatus DownloadStatus
	Download       string
	Progress       Progress
	Arguments      []string
	Data           LogLine
	Close          int
	PackageExtract bool
}

// ChannelSink is the default Sink: it forwards every call as an Event on a
// buffered channel, dropping events if the consumer falls behind rather
// than blocking the pipeline (the teacher's sendStatus uses the same
// non-blocking select pattern).
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a ChannelSink with the given channel buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Events returns the receive-only channel of emitted events.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// CloseChannel closes the underlying channel. Call once, after the pipeline has
// finished emitting.
func (s *ChannelSink) CloseChannel() {
	close(s.ch)
}

func (s *ChannelSink) send(e Event) {
	select {
	case s.ch <- e:
	default:
	}
}

func (s *ChannelSink) Debug(msg string) { s.send(Event{Kind: KindDebug, Debug: msg}) }

func (s *ChannelSink) DownloadStatus(d DownloadStatus) {
	s.send(Event{Kind: KindDownloadStatus, DownloadStatus: d})
}

func (s *ChannelSink) Download(name string) { s.send(Event{Kind: KindDownload, Download: name}) }

func (s *ChannelSink) Progress(p Progress) { s.send(Event{Kind: KindProgress, Progress: p}) }

func (s *ChannelSink) Arguments(args []string) {
	s.send(Event{Kind: KindArguments, Arguments: args})
}

func (s *ChannelSink) Data(line LogLine) { s.send(Event{Kind: KindData, Data: line}) }

func (s *ChannelSink) Close(code int) { s.send(Event{Kind: KindClose, Close: code}) }

func (s *ChannelSink) PackageExtract(ok bool) {
	s.send(Event{Kind: KindPackageExtract, PackageExtract: ok})
}

var _ Sink = (*ChannelSink)(nil)
