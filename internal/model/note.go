package model

// Note is the retrieval core's view of a note owned by the external
// note repository. Ctime/Mtime are unix milliseconds.
type Note struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Ctime   int64  `json:"ctime"`
	Mtime   int64  `json:"mtime"`
}

// NoteSnapshot is the denormalized copy kept alongside an indexed
// vector so search results can be rendered without a repository round
// trip.
type NoteSnapshot struct {
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Mtime  int64  `json:"mtime"`
}

func SnapshotOf(n Note) NoteSnapshot {
	return NoteSnapshot{
		NoteID: n.ID,
		Title:  n.Title,
		Body:   n.Body,
		Mtime:  n.Mtime,
	}
}

// RankedResult is one search hit. Results are ordered by Score
// descending, then Snapshot.Mtime descending, then NoteID ascending.
type RankedResult struct {
	NoteID   string       `json:"note_id"`
	Score    float32      `json:"score"`
	Snapshot NoteSnapshot `json:"snapshot"`
}

// Answer is the result of a retrieval-augmented question. Sources keep
// rank order so callers can cite "source 1, 2, 3".
type Answer struct {
	Text    string         `json:"text"`
	Sources []RankedResult `json:"sources"`
}
