package fst

import "wiiutool/internal/content"

// Node is one fully-resolved FST entry, as delivered to an EntryObserver
// during Walk: everything needed to print a --dump-info-style diagnostic
// line or drive extraction.
type Node struct {
	Index          int
	Entry          Entry
	Name           string
	Path           string // full path from root, '/'-joined
	Depth          int
	PhysicalOffset uint32 // ResolvedOffset(), chunked-offset-translated if hash-tree

	// GuardStop is set for a directory entry whose own resolved offset is
	// <= the enclosing directory's topdir: the original stops recursion
	// on this entry without descending into it or creating it on disk
	// (wiiu_extract.py:68-72 checks topdir before os.makedirs). It is
	// still observed, matching the original's listing order.
	GuardStop bool
}

// EntryObserver is invoked once per visited FST entry in tree pre-order.
// It never has side effects on the walk itself; callers that want
// --full-paths vs indented-tree rendering, or --dump-info diagnostics,
// do so entirely from the Node they receive.
type EntryObserver func(Node)

// isHashTreeFunc reports whether a content index uses hash-tree mode, so
// Walk can apply the chunked-offset translation when resolving a file
// entry's physical offset (spec.md §4.3 step 5).
type isHashTreeFunc func(contentIndex uint16) bool

// Walk performs the recursive pre-order descent described in spec.md
// §4.3, starting at entry index 1 (index 0 is the implicit root).
// skipDeleted, when true, omits entries with the deleted bit (type &
// 0x80) from the observer callback; Extract passes !AllowDeleted, so
// deleted entries are listed and extracted only when the caller opts in
// (--all).
func Walk(table *Table, isHashTree isHashTreeFunc, skipDeleted bool, observe EntryObserver) {
	walkDirectory(table, 1, len(table.Entries), "", 0, -1, isHashTree, skipDeleted, observe)
}

// walkDirectory mirrors the original source's iterate_directory: i is the
// starting index, count is the exclusive upper bound for this level
// (initially total_entries, later a subtree's parent size field), and
// topdir is the enclosing directory's resolved offset, preserved verbatim.
// The exact meaning of "terminate when f_offset <= topdir" is undocumented
// in the source and may guard against malformed/looping FSTs rather than
// encode a real structural invariant.
func walkDirectory(table *Table, start, count int, pathPrefix string, depth int, topdir int64, isHashTree isHashTreeFunc, skipDeleted bool, observe EntryObserver) {
	i := start
	for i < count {
		if i >= len(table.Entries) {
			return
		}
		entry := table.Entries[i]
		name := table.Name(entry.NameOffset)
		path := name
		if pathPrefix != "" {
			path = pathPrefix + "/" + name
		}

		resolved := entry.ResolvedOffset()
		physical := resolved
		guardStop := false
		if entry.IsDirectory() {
			// Directories carry no content payload; their ResolvedOffset
			// doubles as the topdir sentinel, not a byte offset.
			guardStop = int64(resolved) <= topdir
		} else if isHashTree(entry.ContentIndex) {
			physical = uint32(content.PhysicalOffset(int64(resolved)))
		}

		node := Node{
			Index:          i,
			Entry:          entry,
			Name:           name,
			Path:           path,
			Depth:          depth,
			PhysicalOffset: physical,
			GuardStop:      guardStop,
		}

		if !(entry.IsDeleted() && skipDeleted) {
			observe(node)
		}

		if entry.IsDirectory() {
			if guardStop {
				return
			}
			walkDirectory(table, i+1, int(entry.Size), path, depth+1, int64(resolved), isHashTree, skipDeleted, observe)
			i = int(entry.Size) - 1
		}

		i++
	}
}
