// Package core holds the domain types and ports shared by the store, the
// filesystem engine and the service that ties them together.
package core

import "time"

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is the central entity of the domain.
// It represents a piece of knowledge identified by an ID (its title).
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Clone returns a copy of the document with its own top-level metadata map.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(Metadata, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the store.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}

// FileStat is a file path together with the modification time read from
// filesystem metadata.
type FileStat struct {
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
