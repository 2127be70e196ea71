package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	WalkStarted Type = iota + 1
	WalkComplete
	DirCreated
	FileCompleted
	LinkCreated
	FileSkipped
	FileFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	WalkStarted:   "WalkStarted",
	WalkComplete:  "WalkComplete",
	DirCreated:    "DirCreated",
	FileCompleted: "FileCompleted",
	LinkCreated:   "LinkCreated",
	FileSkipped:   "FileSkipped",
	FileFailed:    "FileFailed",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is a single progress notification from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // relative to the copy root; absolute destination for DirCreated and Verify*
	Size      int64  // bytes written (FileCompleted)
	Total     int64  // mappings planned (WalkComplete, VerifyStarted)
	TotalSize int64  // bytes planned (WalkComplete)
	Error     error
}
