package demo

import (
	"fmt"
	"io"
	"strings"
)

// Line is one rendered line of a Screen.
type Line struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Screen collects rendered lines in the order they first appeared.
type Screen struct {
	order  []string
	lines  map[string]string
	writes int
}

// NewScreen creates an empty screen.
func NewScreen() *Screen {
	return &Screen{lines: make(map[string]string)}
}

// Set renders text at id. Writing the text already shown is not counted.
func (s *Screen) Set(id, text string) {
	old, ok := s.lines[id]
	if ok && old == text {
		return
	}
	if !ok {
		s.order = append(s.order, id)
	}
	s.lines[id] = text
	s.writes++
}

// Setf is Set with formatting.
func (s *Screen) Setf(id, format string, args ...any) {
	s.Set(id, fmt.Sprintf(format, args...))
}

// Delete removes the line at id.
func (s *Screen) Delete(id string) {
	if _, ok := s.lines[id]; !ok {
		return
	}
	delete(s.lines, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.writes++
}

// Line returns the text at id, or "" when nothing is rendered there.
func (s *Screen) Line(id string) string {
	return s.lines[id]
}

// Has reports whether a line is rendered at id.
func (s *Screen) Has(id string) bool {
	_, ok := s.lines[id]
	return ok
}

// Lines returns the rendered lines, optionally only those whose id has
// the given prefix.
func (s *Screen) Lines(prefix string) []Line {
	var out []Line
	for _, id := range s.order {
		if strings.HasPrefix(id, prefix) {
			out = append(out, Line{ID: id, Text: s.lines[id]})
		}
	}
	return out
}

// Writes returns the number of changes made to the screen.
func (s *Screen) Writes() int {
	return s.writes
}

// Render prints the lines with the given prefix.
func (s *Screen) Render(w io.Writer, prefix string) error {
	for _, l := range s.Lines(prefix) {
		if _, err := fmt.Fprintf(w, "  %-28s %s\n", l.ID, l.Text); err != nil {
			return err
		}
	}
	return nil
}
