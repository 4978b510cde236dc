// Package split drives the single pass over the dump stream. It routes
// each line to a logical output target according to its classification,
// tracks per-table counters, and rolls data files over into chunks.
package split

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/splitdump/splitdump/internal/classify"
	"github.com/splitdump/splitdump/internal/output"
)

// DefaultChunkSize is the number of row-insert statements per data
// chunk when no size is configured.
const DefaultChunkSize = 10000

// Options controls a split pass.
type Options struct {
	// StructureOnly marks the input as a structure-only dump: data
	// targets are referenced for the manifest and protected from
	// reaping, but their files are never opened or written.
	StructureOnly bool
	// ChunkSize is the number of row-insert statements after which a
	// data file rolls over to a new chunk file.
	ChunkSize int
}

// tableState carries the per-table counters the router needs. Tables
// are created on first reference and live for the run.
type tableState struct {
	auxBlocks int
	inserts   int
	chunks    int
}

// Splitter is the stream router. It owns the current-target cursor;
// there is never more than one active target at a time.
type Splitter struct {
	out     *output.Manager
	opts    Options
	tables  map[string]*tableState
	current output.Target
	table   string // table owning the current section
	lines   int64
	inserts int64
}

// New creates a Splitter writing through the given manager.
func New(out *output.Manager, opts Options) *Splitter {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Splitter{
		out:    out,
		opts:   opts,
		tables: map[string]*tableState{},
	}
}

// Run consumes the line stream in one strictly sequential pass. Line
// terminators are preserved; lines are written verbatim to whichever
// file they are routed to.
func (s *Splitter) Run(r io.Reader) error {
	head := output.Target{Kind: output.Head}
	if err := s.out.Activate(head); err != nil {
		return err
	}
	s.current = head

	br := bufio.NewReader(r)
	for {
		raw, readErr := br.ReadString('\n')
		if len(raw) > 0 {
			s.lines++
			if err := s.step(raw); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read input: %w", readErr)
		}
	}
}

// step routes one raw line, terminator included.
func (s *Splitter) step(raw string) error {
	trimmed := strings.TrimRight(raw, "\r\n")
	ev := classify.Classify(trimmed, s.current.Kind == output.Head)

	switch ev.Kind {
	case classify.IgnorableComment, classify.HeaderBoilerplate, classify.DumpCompleted:
		return nil

	case classify.TableStructureStart:
		s.stat(ev.Table)
		slog.Info("table structure section", "table", ev.Table)
		target := output.Target{Kind: output.Structure, Table: ev.Table}
		if err := s.out.Activate(target); err != nil {
			return err
		}
		s.current = target
		s.table = ev.Table
		if s.opts.StructureOnly {
			// Keep the existing data file's manifest slot and protect it
			// from reaping without touching its content.
			if err := s.out.Register(output.Target{Kind: output.Data, Table: ev.Table}); err != nil {
				return err
			}
		}
		return s.out.Write(target, raw)

	case classify.DataDumpStart:
		s.stat(ev.Table)
		slog.Info("table data section", "table", ev.Table)
		target := output.Target{Kind: output.Data, Table: ev.Table}
		s.table = ev.Table
		s.current = target
		if s.opts.StructureOnly {
			return s.out.Register(target)
		}
		if err := s.out.Activate(target); err != nil {
			return err
		}
		return s.out.Write(target, raw)

	case classify.AuxBlockStart:
		if s.table == "" {
			// No owning table yet; header-region noise stays in the head.
			return s.content(raw, trimmed)
		}
		t := s.stat(s.table)
		t.auxBlocks++
		slog.Info("aux block", "table", s.table, "seq", t.auxBlocks)
		target := output.Target{Kind: output.Aux, Table: s.table, Seq: t.auxBlocks}
		if err := s.out.Activate(target); err != nil {
			return err
		}
		s.current = target
		return s.out.Write(target, raw)

	case classify.RoutinesStart:
		slog.Info("routines section")
		target := output.Target{Kind: output.Tail}
		if err := s.out.Activate(target); err != nil {
			return err
		}
		s.current = target
		return s.out.Write(target, classify.RoutinesBanner+raw[len(trimmed):])

	default:
		return s.content(raw, trimmed)
	}
}

// content appends an ordinary line to the current target. Data targets
// go through the chunk accounting; in structure-only mode data content
// is dropped so existing data files stay untouched.
func (s *Splitter) content(raw, trimmed string) error {
	if !s.current.IsData() {
		return s.out.Write(s.current, raw)
	}
	if s.opts.StructureOnly {
		return nil
	}
	if classify.IsInsert(trimmed) {
		t := s.stat(s.table)
		if t.inserts > 0 && t.inserts%s.opts.ChunkSize == 0 {
			if err := s.rollover(t); err != nil {
				return err
			}
		}
		t.inserts++
		s.inserts++
	}
	return s.out.Write(s.current, raw)
}

// rollover closes out the active chunk with a blank line and switches
// the cursor to the next sequence-numbered chunk file. The blank line
// lets a line-oriented post-processor find the final statement
// terminator of each non-final chunk unambiguously.
func (s *Splitter) rollover(t *tableState) error {
	if err := s.out.Write(s.current, "\n"); err != nil {
		return err
	}
	t.chunks++
	next := output.Target{Kind: output.Chunk, Table: s.table, Seq: t.chunks}
	slog.Info("data chunk rollover", "table", s.table, "chunk", t.chunks, "inserts", t.inserts)
	if err := s.out.Activate(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

func (s *Splitter) stat(name string) *tableState {
	t, ok := s.tables[name]
	if !ok {
		t = &tableState{}
		s.tables[name] = t
	}
	return t
}

// Tables returns how many distinct tables the pass saw.
func (s *Splitter) Tables() int {
	return len(s.tables)
}

// Lines returns how many input lines were consumed.
func (s *Splitter) Lines() int64 {
	return s.lines
}

// Inserts returns how many row-insert statements were routed.
func (s *Splitter) Inserts() int64 {
	return s.inserts
}
