// Package classify maps single dump lines to routing events.
//
// Classification is total: every line maps to exactly one event, and any
// line no rule recognizes is plain content of whatever section the
// stream is currently in. Rules are matched by fixed line prefixes only;
// no SQL is ever parsed.
package classify

import (
	"regexp"
	"strings"
)

// Kind identifies the routing decision for one line.
type Kind int

const (
	// Content is the fall-through: an ordinary line of the current section.
	Content Kind = iota
	// IgnorableComment is a bare "--" separator line, dropped so that
	// full and structure-only dumps diff identically.
	IgnorableComment
	// HeaderBoilerplate is environment-specific banner text in the dump
	// header (host, server version, CREATE DATABASE/USE), dropped.
	HeaderBoilerplate
	// TableStructureStart begins a table's DDL section.
	TableStructureStart
	// DataDumpStart begins a table's row data section.
	DataDumpStart
	// AuxBlockStart begins a trigger/mode-save block attached to the
	// most recent table.
	AuxBlockStart
	// RoutinesStart begins the stored-routines trailer section.
	RoutinesStart
	// DumpCompleted is the trailing timestamp line, dropped.
	DumpCompleted
)

// Event is the classification result for one line. Table is set only for
// TableStructureStart and DataDumpStart.
type Event struct {
	Kind  Kind
	Table string
}

var (
	structureRe = regexp.MustCompile("^-- Table structure for table `([^`]+)`")
	dataRe      = regexp.MustCompile("^-- Dumping data for table `([^`]+)`")
)

// headerPrefixes match banner lines that only appear in the dump header
// region and are not meant to be replayed into a restore target.
var headerPrefixes = []string{
	"-- MySQL dump",
	"-- MariaDB dump",
	"-- Host:",
	"-- Server version",
	"-- Current Database:",
	"CREATE DATABASE",
	"USE ",
}

// rule pairs a predicate with an event constructor. The slice below is
// evaluated in order and the first match wins; some patterns would be
// ambiguous with generic content if tried later.
type rule struct {
	match func(line string, inHeader bool) (Event, bool)
}

var rules = []rule{
	{func(line string, _ bool) (Event, bool) {
		if line == "--" {
			return Event{Kind: IgnorableComment}, true
		}
		return Event{}, false
	}},
	{func(line string, inHeader bool) (Event, bool) {
		if !inHeader {
			return Event{}, false
		}
		for _, p := range headerPrefixes {
			if strings.HasPrefix(line, p) {
				return Event{Kind: HeaderBoilerplate}, true
			}
		}
		return Event{}, false
	}},
	{func(line string, _ bool) (Event, bool) {
		if m := structureRe.FindStringSubmatch(line); m != nil {
			return Event{Kind: TableStructureStart, Table: m[1]}, true
		}
		return Event{}, false
	}},
	{func(line string, _ bool) (Event, bool) {
		if m := dataRe.FindStringSubmatch(line); m != nil {
			return Event{Kind: DataDumpStart, Table: m[1]}, true
		}
		return Event{}, false
	}},
	{func(line string, _ bool) (Event, bool) {
		if hasPrefixFold(line, "/*!50003 SET @saved_cs_client") {
			return Event{Kind: AuxBlockStart}, true
		}
		return Event{}, false
	}},
	{func(line string, _ bool) (Event, bool) {
		if strings.HasPrefix(line, "-- Dumping routines for database") {
			return Event{Kind: RoutinesStart}, true
		}
		return Event{}, false
	}},
	{func(line string, _ bool) (Event, bool) {
		if strings.HasPrefix(line, "-- Dump completed") {
			return Event{Kind: DumpCompleted}, true
		}
		return Event{}, false
	}},
}

// Classify returns the event for one line, stripped of its terminator.
// inHeader must be true while the stream is still in the unclassified
// header region; header boilerplate further down the dump is legitimate
// content and must not be dropped.
func Classify(line string, inHeader bool) Event {
	for _, r := range rules {
		if ev, ok := r.match(line, inHeader); ok {
			return ev
		}
	}
	return Event{Kind: Content}
}

// RoutinesBanner is the normalized routines banner written to the tail
// file in place of the original line, which carries the database name.
const RoutinesBanner = "-- Dumping routines for database"

// IsInsert reports whether a data-section line is a row-insert
// statement, the unit the chunk rollover counts.
func IsInsert(line string) bool {
	return strings.HasPrefix(line, "INSERT INTO ")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
