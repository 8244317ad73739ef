package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/reactor/pkg/keyed"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// PatchRecorder receives the patch counts of every list reconciliation.
// *telemetry.Metrics implements it.
type PatchRecorder interface {
	RecordPatches(stats keyed.Stats)
}

// StaticListLength is the number of counters in the static list.
const StaticListLength = 5

// StaticList is a fixed list of independent counters holding 1..5.
type StaticList struct {
	counters []*reactive.Signal[int]
}

// NewStaticList renders the counters under "static/".
func NewStaticList(s *reactive.Scope, screen *Screen) (*StaticList, error) {
	l := &StaticList{}
	for i := range StaticListLength {
		count := reactive.NewSignal(s, i+1)
		id := fmt.Sprintf("static/%d", i)
		if _, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
			screen.Setf(id, "<button>%d</button>", count.Get())
			return nil
		}, reactive.WithName(id)); err != nil {
			return nil, err
		}
		l.counters = append(l.counters, count)
	}
	return l, nil
}

// Click increments counter i.
func (l *StaticList) Click(i int) error {
	if i < 0 || i >= len(l.counters) {
		return fmt.Errorf("static counter %d out of range [0,%d)", i, len(l.counters))
	}
	return l.counters[i].Update(func(n int) int { return n + 1 })
}

// Values returns the counts.
func (l *StaticList) Values() []int {
	out := make([]int, len(l.counters))
	for i, c := range l.counters {
		out[i] = c.Peek()
	}
	return out
}

// counterEntry is one dynamic counter: its id and starting value.
type counterEntry struct {
	ID      int
	Initial int
}

// DynamicList is a list of counters that can be added, removed by id and
// incremented. Each row owns its count, so a counter keeps its value when
// others come and go.
type DynamicList struct {
	entries *reactive.Signal[[]counterEntry]
	list    *keyed.List[int, *reactive.Signal[int]]
	nextID  int
	screen  *Screen
}

// NewDynamicList renders initialLength counters under "list/". Counter id
// starts at id+1.
func NewDynamicList(s *reactive.Scope, screen *Screen, initialLength int, recorder PatchRecorder) (*DynamicList, error) {
	initial := make([]counterEntry, initialLength)
	for i := range initial {
		initial[i] = counterEntry{ID: i, Initial: i + 1}
	}
	d := &DynamicList{
		entries: reactive.NewSignal(s, initial),
		nextID:  initialLength,
		screen:  screen,
	}

	list, _, err := keyed.For(s,
		d.entries.Get,
		func(e counterEntry) int { return e.ID },
		func(rs *reactive.Scope, e counterEntry, _ int) *reactive.Signal[int] {
			return d.renderRow(rs, e)
		},
		func(patches []keyed.Patch[int], rows []keyed.Row[int, *reactive.Signal[int]]) error {
			keys := make([]string, len(rows))
			for i, row := range rows {
				keys[i] = fmt.Sprint(row.Key)
			}
			screen.Set("list/order", "["+strings.Join(keys, " ")+"]")
			if recorder != nil {
				recorder.RecordPatches(keyed.Count(patches))
			}
			return nil
		},
		reactive.WithName("dynamic-list"))
	if err != nil {
		return nil, err
	}
	d.list = list
	return d, nil
}

// renderRow creates the row's own count and renders it at "list/<id>".
func (d *DynamicList) renderRow(rs *reactive.Scope, e counterEntry) *reactive.Signal[int] {
	count := reactive.NewSignal(rs, e.Initial)
	id := fmt.Sprintf("list/%d", e.ID)
	if _, err := reactive.CreateEffect(rs, func(*reactive.Scope) error {
		d.screen.Setf(id, "<button>%d</button>", count.Get())
		return nil
	}, reactive.WithName(id)); err != nil {
		rs.Runtime().Logger().Warn("demo: row render failed", "row", id, "error", err)
	}
	reactive.OnCleanup(rs, func() { d.screen.Delete(id) })
	return count
}

// Add appends a counter and returns its id.
func (d *DynamicList) Add() (int, error) {
	id := d.nextID
	d.nextID++
	err := d.entries.Update(func(entries []counterEntry) []counterEntry {
		return append(entries[:len(entries):len(entries)], counterEntry{ID: id, Initial: id + 1})
	})
	return id, err
}

// Remove drops the counter with the given id.
func (d *DynamicList) Remove(id int) error {
	if _, ok := d.list.Get(id); !ok {
		return fmt.Errorf("no counter with id %d", id)
	}
	return d.entries.Update(func(entries []counterEntry) []counterEntry {
		out := make([]counterEntry, 0, len(entries))
		for _, e := range entries {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out
	})
}

// Increment adds one to the counter with the given id.
func (d *DynamicList) Increment(id int) error {
	row, ok := d.list.Get(id)
	if !ok {
		return fmt.Errorf("no counter with id %d", id)
	}
	return row.Value.Update(func(n int) int { return n + 1 })
}

// IDs returns the counter ids in display order.
func (d *DynamicList) IDs() []int {
	return d.list.Keys()
}

// Value returns the count of the counter with the given id.
func (d *DynamicList) Value(id int) (int, bool) {
	row, ok := d.list.Get(id)
	if !ok {
		return 0, false
	}
	return row.Value.Peek(), true
}

// Entry is one row of the complex data table.
type Entry struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// InitialEntries is the starting data of the table.
func InitialEntries() []Entry {
	return []Entry{
		{Key: "foo", Value: 10},
		{Key: "bar", Value: 20},
		{Key: "baz", Value: 15},
	}
}

// Table iterates over structured data. Rows are keyed by entry key and each
// row reads its value from the shared data through a memo on its index, so
// updating the data re-renders the values without recreating rows.
type Table struct {
	data *reactive.Signal[[]Entry]
	list *keyed.List[string, *reactive.Memo[int]]
}

// NewTable renders the data under "table/".
func NewTable(s *reactive.Scope, screen *Screen, recorder PatchRecorder) (*Table, error) {
	t := &Table{data: reactive.NewSignal(s, InitialEntries())}

	list, _, err := keyed.For(s,
		t.data.Get,
		func(e Entry) string { return e.Key },
		func(rs *reactive.Scope, e Entry, index int) *reactive.Memo[int] {
			value := reactive.NewMemo(rs, func() int {
				data := t.data.Get()
				if index >= len(data) {
					return 0
				}
				return data[index].Value
			}).WithName("table-value-" + e.Key)
			id := "table/" + e.Key
			if _, err := reactive.CreateEffect(rs, func(*reactive.Scope) error {
				screen.Setf(id, "<p>%d</p>", value.Get())
				return nil
			}, reactive.WithName(id)); err != nil {
				rs.Runtime().Logger().Warn("demo: row render failed", "row", id, "error", err)
			}
			reactive.OnCleanup(rs, func() { screen.Delete(id) })
			return value
		},
		func(patches []keyed.Patch[string], _ []keyed.Row[string, *reactive.Memo[int]]) error {
			if recorder != nil {
				recorder.RecordPatches(keyed.Count(patches))
			}
			return nil
		},
		reactive.WithName("table"))
	if err != nil {
		return nil, err
	}
	t.list = list
	return t, nil
}

// UpdateValues doubles every value.
func (t *Table) UpdateValues() error {
	return t.data.Update(func(data []Entry) []Entry {
		out := make([]Entry, len(data))
		for i, e := range data {
			out[i] = Entry{Key: e.Key, Value: e.Value * 2}
		}
		return out
	})
}

// Data returns the current entries.
func (t *Table) Data() []Entry {
	return t.data.Peek()
}

// Value returns the value rendered for key.
func (t *Table) Value(key string) (int, bool) {
	row, ok := t.list.Get(key)
	if !ok {
		return 0, false
	}
	return row.Value.Peek(), true
}
