package battle

import "strings"

// LogRecord is one entry of the battle log: a title followed by
// pipe-separated fields, each either a bare flag or a `key:value` pair
// (spec.md §6). The log is the engine's sole observable output surface —
// every visible battle effect produces one of these.
type LogRecord struct {
	Title  string
	Fields []string
}

// Field appends a bare flag field (no value) and returns the record for
// chaining, e.g. `NewLogRecord("activate").Field("move:Splash")`.
func (r *LogRecord) Field(flag string) *LogRecord {
	r.Fields = append(r.Fields, flag)
	return r
}

// KV appends a `key:value` field.
func (r *LogRecord) KV(key, value string) *LogRecord {
	r.Fields = append(r.Fields, key+":"+value)
	return r
}

// String renders the record in wire form: title, then each field
// separated by `|`.
func (r *LogRecord) String() string {
	var b strings.Builder
	b.WriteString(r.Title)
	for _, f := range r.Fields {
		b.WriteByte('|')
		b.WriteString(f)
	}
	return b.String()
}

// NewLogRecord starts a record with the given title.
func NewLogRecord(title string) *LogRecord {
	return &LogRecord{Title: title}
}

// MonField renders a Mon reference field in the `name,player,position`
// form spec.md §6 requires, omitting position when the Mon is not
// currently active (position < 0).
func MonField(name, player string, position int) string {
	if position < 0 {
		return name + "," + player
	}
	return name + "," + player + "," + positionLetter(position)
}

func positionLetter(position int) string {
	// Positions are zero-based internally; the log uses 1-based slot
	// letters (a, b, c, ...) matching the documented `name,player,position`
	// convention for multi-mon formats.
	return string(rune('a' + position))
}

// Log is the ordered battle log sink: append-only, replayed verbatim by a
// client-side state tracker outside this engine's scope (spec.md §1 lists
// the replay tracker as an external collaborator).
type Log struct {
	records []*LogRecord
}

// NewLog creates an empty battle log.
func NewLog() *Log {
	return &Log{}
}

// Append adds r to the log.
func (l *Log) Append(r *LogRecord) {
	l.records = append(l.records, r)
}

// Records returns the full ordered record slice (read-only use by
// callers; the slice itself is not a stable reference to retain across
// dispatch boundaries, per spec.md §9 — re-fetch via Records each time).
func (l *Log) Records() []*LogRecord {
	return l.records
}

// Lines renders every record to its wire-form string, in order.
func (l *Log) Lines() []string {
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.String()
	}
	return out
}
