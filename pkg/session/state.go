// Package session holds the state of one capture session and the
// controller that drives it.
package session

import (
	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/history"
	"github.com/nodewee/ocr-hub/pkg/types"
)

// ProcessingState is whether a recognition is running and how far it got
type ProcessingState struct {
	IsProcessing bool `json:"is_processing"`
	Progress     int  `json:"progress"`
}

// NotificationState is the single transient banner
type NotificationState struct {
	Visible bool                   `json:"visible"`
	Message string                 `json:"message"`
	Kind    types.NotificationKind `json:"kind"`
	Seq     uint64                 `json:"seq"`
}

// State is a snapshot of the session. It is only changed through Reduce.
type State struct {
	Selected     *types.SelectedFile
	Processing   ProcessingState
	Notification NotificationState
	Text         string
	History      history.Buffer
	CameraActive bool
}

// NewState returns the state of a fresh session
func NewState() State {
	return State{History: history.NewBuffer(constants.HistoryCapacity)}
}

// Event is something that happened to the session
type Event interface {
	isEvent()
}

// FileSelected replaces the selected file
type FileSelected struct{ File *types.SelectedFile }

// ProcessingStarted marks the start of a recognition
type ProcessingStarted struct{}

// ProgressChanged updates the displayed progress
type ProgressChanged struct{ Progress int }

// ProcessingFinished ends a recognition, whatever its outcome
type ProcessingFinished struct{}

// ExtractionSucceeded publishes a result and records it in history
type ExtractionSucceeded struct{ Entry history.Entry }

// TextEdited replaces the displayed text with the user's edit
type TextEdited struct{ Text string }

// Notified shows a notification, replacing any visible one
type Notified struct {
	Kind    types.NotificationKind
	Message string
	Seq     uint64
}

// NotificationExpired hides notification Seq if it is still the visible one
type NotificationExpired struct{ Seq uint64 }

// CameraStarted marks the camera as live
type CameraStarted struct{}

// CameraStopped marks the camera as released
type CameraStopped struct{}

func (FileSelected) isEvent()        {}
func (ProcessingStarted) isEvent()   {}
func (ProgressChanged) isEvent()     {}
func (ProcessingFinished) isEvent()  {}
func (ExtractionSucceeded) isEvent() {}
func (TextEdited) isEvent()          {}
func (Notified) isEvent()            {}
func (NotificationExpired) isEvent() {}
func (CameraStarted) isEvent()       {}
func (CameraStopped) isEvent()       {}

// Reduce returns the state after ev. It never modifies s.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case FileSelected:
		s.Selected = e.File
	case ProcessingStarted:
		s.Processing = ProcessingState{IsProcessing: true, Progress: 0}
	case ProgressChanged:
		if s.Processing.IsProcessing {
			s.Processing.Progress = clampProgress(e.Progress)
		}
	case ProcessingFinished:
		s.Processing = ProcessingState{}
	case ExtractionSucceeded:
		s.Text = e.Entry.Text
		s.History = s.History.Push(e.Entry)
	case TextEdited:
		s.Text = e.Text
	case Notified:
		// Last write wins, even when events arrive out of order
		if e.Seq >= s.Notification.Seq {
			s.Notification = NotificationState{Visible: true, Message: e.Message, Kind: e.Kind, Seq: e.Seq}
		}
	case NotificationExpired:
		if e.Seq == s.Notification.Seq {
			s.Notification.Visible = false
			s.Notification.Message = ""
			s.Notification.Kind = ""
		}
	case CameraStarted:
		s.CameraActive = true
	case CameraStopped:
		s.CameraActive = false
	}
	return s
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > constants.ProgressComplete {
		return constants.ProgressComplete
	}
	return p
}
