package output

import "fmt"

// Kind enumerates the logical output files a run can produce.
type Kind int

const (
	// Head holds header-region content that survives classification.
	Head Kind = iota
	// Structure holds one table's DDL section.
	Structure
	// Data holds the first chunk of one table's row data.
	Data
	// Chunk holds a rolled-over slice of one table's row data.
	Chunk
	// Aux holds one trigger/mode-save block of a table.
	Aux
	// Tail holds the stored-routines trailer.
	Tail
)

// Target is a logical file identity. It maps 1:1 to a file name inside
// the output directory. Seq is the chunk or aux sequence number and is
// meaningful only for Chunk and Aux targets.
type Target struct {
	Kind  Kind
	Table string
	Seq   int
}

// FileName returns the target's file name within the output directory.
// All per-table names start with the table name so a table filter can
// scope reaping by prefix.
func (t Target) FileName() string {
	switch t.Kind {
	case Head:
		return "head.sql"
	case Tail:
		return "tail.sql"
	case Structure:
		return t.Table + ".sql"
	case Data:
		return t.Table + ".data.sql"
	case Chunk:
		return fmt.Sprintf("%s.%010d.data.sql", t.Table, t.Seq)
	case Aux:
		return fmt.Sprintf("%s.%04d.aux.sql", t.Table, t.Seq)
	}
	return ""
}

// IsData reports whether content routed to this target is row data and
// therefore subject to chunk rollover.
func (t Target) IsData() bool {
	return t.Kind == Data || t.Kind == Chunk
}
