package registers

import (
	"fmt"
	"sort"
	"sync"

	"ecogw/internal/domain/models"
)

// Block is a named, contiguous run of register addresses owned by one producer.
type Block struct {
	Name  string
	Start uint16
	Size  int
}

func (b Block) end() int { return int(b.Start) + b.Size }

func (b Block) contains(addr int) bool { return addr >= int(b.Start) && addr < b.end() }

// Table maps register addresses to their current value. A single mutex guards the
// whole table so a reader never sees half of a write batch.
type Table struct {
	mu     sync.Mutex
	blocks []Block
	values map[uint16]models.RegisterValue
}

// NewTable creates a table covering the given blocks, every address unknown.
func NewTable(blocks ...Block) (*Table, error) {
	sorted := append([]Block(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	values := make(map[uint16]models.RegisterValue)
	for i, b := range sorted {
		if b.Size <= 0 {
			return nil, fmt.Errorf("block %q: size must be positive", b.Name)
		}
		if b.end() > 1<<16 {
			return nil, fmt.Errorf("block %q: exceeds 16-bit address space", b.Name)
		}
		if i > 0 && int(b.Start) < sorted[i-1].end() {
			return nil, fmt.Errorf("block %q overlaps block %q", b.Name, sorted[i-1].Name)
		}
		for a := b.end() - 1; a >= int(b.Start); a-- {
			values[uint16(a)] = models.Unknown()
		}
	}

	return &Table{blocks: sorted, values: values}, nil
}

// Read returns count values starting at start, or models.ErrUnavailable when any
// address of the range is unknown or outside every block.
func (t *Table) Read(start, count uint16) ([]uint16, error) {
	if count == 0 || int(start)+int(count) > 1<<16 {
		return nil, models.ErrUnavailable
	}

	out := make([]uint16, count)

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range out {
		v, ok := t.values[start+uint16(i)]
		if !ok || !v.Known {
			return nil, models.ErrUnavailable
		}
		out[i] = v.V
	}
	return out, nil
}

// WriteBatch replaces every listed address in one step. Unlisted addresses keep
// their value. Nothing is written if any address falls outside the table's blocks.
func (t *Table) WriteBatch(values map[uint16]models.RegisterValue) error {
	for addr := range values {
		if !t.covers(int(addr)) {
			return fmt.Errorf("register %d: outside any block", addr)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for addr, v := range values {
		t.values[addr] = v
	}
	return nil
}

// Entry is one address of a table snapshot.
type Entry struct {
	Address uint16 `json:"address"`
	Value   uint16 `json:"value"`
	Known   bool   `json:"known"`
}

// Snapshot copies the whole table in address order.
func (t *Table) Snapshot() []Entry {
	t.mu.Lock()
	out := make([]Entry, 0, len(t.values))
	for addr, v := range t.values {
		out = append(out, Entry{Address: addr, Value: v.V, Known: v.Known})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Blocks returns the blocks the table was built with, ordered by start address.
func (t *Table) Blocks() []Block {
	return append([]Block(nil), t.blocks...)
}

// blocks is immutable after NewTable, no lock needed.
func (t *Table) covers(addr int) bool {
	for _, b := range t.blocks {
		if b.contains(addr) {
			return true
		}
	}
	return false
}
