// Package history keeps the most recent extraction results of a session.
package history

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nodewee/ocr-hub/pkg/constants"
)

// TimestampLayout is how entry timestamps are displayed
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Entry is one immutable extraction result
type Entry struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	Text       string    `json:"text"`
	Timestamp  string    `json:"timestamp"`
	PreviewURL string    `json:"preview_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasPreview reports whether the entry carries a representative image.
// PDF-derived entries never do.
func (e Entry) HasPreview() bool {
	return e.PreviewURL != ""
}

// Preview returns the first HistoryPreviewLen characters, with an ellipsis when cut
func (e Entry) Preview() string {
	if utf8.RuneCountInString(e.Text) <= constants.HistoryPreviewLen {
		return e.Text
	}
	runes := []rune(e.Text)
	return string(runes[:constants.HistoryPreviewLen]) + "..."
}

// Buffer is a newest-first list bounded by its capacity. It is a value:
// Push returns a new Buffer and never modifies the receiver.
type Buffer struct {
	entries  []Entry
	capacity int
}

// NewBuffer returns an empty buffer holding at most capacity entries
func NewBuffer(capacity int) Buffer {
	if capacity <= 0 {
		capacity = constants.HistoryCapacity
	}
	return Buffer{capacity: capacity}
}

// Push prepends e and evicts the oldest entries beyond capacity
func (b Buffer) Push(e Entry) Buffer {
	capacity := b.capacity
	if capacity <= 0 {
		capacity = constants.HistoryCapacity
	}

	n := len(b.entries) + 1
	if n > capacity {
		n = capacity
	}
	next := make([]Entry, 0, n)
	next = append(next, e)
	next = append(next, b.entries[:n-1]...)
	return Buffer{entries: next, capacity: capacity}
}

// Entries returns a copy of the entries, newest first
func (b Buffer) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Len returns the number of entries
func (b Buffer) Len() int {
	return len(b.entries)
}

// Get finds an entry by id
func (b Buffer) Get(id int64) (Entry, bool) {
	for _, e := range b.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// IDGenerator hands out millisecond timestamps that strictly increase
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator backed by the wall clock
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns the next id. Collisions within one millisecond are bumped by one.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// NewEntry builds an entry stamped with id and the given creation time
func NewEntry(id int64, fileName, text, previewURL string, at time.Time) Entry {
	return Entry{
		ID:         id,
		FileName:   fileName,
		Text:       text,
		Timestamp:  at.Format(TimestampLayout),
		PreviewURL: previewURL,
		CreatedAt:  at,
	}
}
