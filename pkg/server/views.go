package server

import (
	"html/template"

	"github.com/nodewee/ocr-hub/pkg/export"
	"github.com/nodewee/ocr-hub/pkg/session"
	"github.com/nodewee/ocr-hub/pkg/types"
)

type fileView struct {
	Name     string              `json:"name"`
	MIMEType string              `json:"mime_type"`
	Size     int64               `json:"size"`
	SizeMB   string              `json:"size_mb"`
	Source   types.CaptureSource `json:"source"`
}

type notificationView struct {
	Kind    types.NotificationKind `json:"kind"`
	Message string                 `json:"message"`
}

type historyView struct {
	ID         int64  `json:"id"`
	FileName   string `json:"file_name"`
	Timestamp  string `json:"timestamp"`
	Preview    string `json:"preview"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// stateView is the JSON shape of /api/state
type stateView struct {
	Selected     *fileView         `json:"selected,omitempty"`
	IsProcessing bool              `json:"is_processing"`
	Progress     int               `json:"progress"`
	Notification *notificationView `json:"notification,omitempty"`
	Text         string            `json:"text"`
	Chars        int               `json:"chars"`
	Words        int               `json:"words"`
	CameraActive bool              `json:"camera_active"`
	History      []historyView     `json:"history"`
}

func newFileView(f *types.SelectedFile) *fileView {
	if f == nil {
		return nil
	}
	return &fileView{
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Size:     f.Size,
		SizeMB:   f.SizeMB(),
		Source:   f.Source,
	}
}

func newStateView(s session.State) stateView {
	chars, words := export.Stats(s.Text)
	v := stateView{
		Selected:     newFileView(s.Selected),
		IsProcessing: s.Processing.IsProcessing,
		Progress:     s.Processing.Progress,
		Text:         s.Text,
		Chars:        chars,
		Words:        words,
		CameraActive: s.CameraActive,
		History:      make([]historyView, 0, s.History.Len()),
	}
	if s.Notification.Visible {
		v.Notification = &notificationView{Kind: s.Notification.Kind, Message: s.Notification.Message}
	}
	for _, e := range s.History.Entries() {
		v.History = append(v.History, historyView{
			ID:         e.ID,
			FileName:   e.FileName,
			Timestamp:  e.Timestamp,
			Preview:    e.Preview(),
			PreviewURL: e.PreviewURL,
		})
	}
	return v
}

// pageEntry carries the preview as a trusted URL; previews are data URLs
// rendered by the imaging package
type pageEntry struct {
	historyView
	Image template.URL
}

type pageData struct {
	stateView
	Entries []pageEntry
}

func newPageData(s session.State) pageData {
	v := newStateView(s)
	entries := make([]pageEntry, 0, len(v.History))
	for _, h := range v.History {
		entries = append(entries, pageEntry{historyView: h, Image: template.URL(h.PreviewURL)})
	}
	return pageData{stateView: v, Entries: entries}
}
