package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pathcover/pkg/errors"
	"github.com/matzehuels/pathcover/pkg/extract"
	"github.com/matzehuels/pathcover/pkg/pathcover"
)

// Trail output formats.
const (
	FormatJSONL = "jsonl"
	FormatJSON  = "json"
)

// ValidateFormat checks that format is a known trail format.
func ValidateFormat(format string) error {
	switch format {
	case FormatJSONL, FormatJSON:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: jsonl, json)", format)
}

// Source yields trails until io.EOF. *pathcover.Cover implements it.
type Source interface {
	Next() (extract.Trail, error)
}

// Trail is an exported trail with state and action ids resolved.
type Trail struct {
	Index int    `json:"index"`
	Steps []Step `json:"steps"`
}

// Step is one exported action.
type Step struct {
	Action string `json:"action,omitempty"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// Document is the single-document trail format.
type Document struct {
	Stats  *pathcover.Stats `json:"stats,omitempty"`
	Trails []Trail          `json:"trails"`
}

// Resolve converts a trail into its exported form using the graph and index
// produced by Feed.
func Resolve(g *Graph, idx *Index, i int, t extract.Trail) Trail {
	out := Trail{Index: i, Steps: make([]Step, len(t))}
	for j, s := range t {
		a := g.Actions[idx.Actions[s.Action]]
		out.Steps[j] = Step{Action: a.Name, From: a.From, To: a.To}
	}
	return out
}

// WriteJSONL writes one trail per line as src produces them and returns the
// number of trails written.
func WriteJSONL(w io.Writer, src Source, g *Graph, idx *Index) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	n := 0
	for {
		t, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := enc.Encode(Resolve(g, idx, n, t)); err != nil {
			return n, fmt.Errorf("encode trail %d: %w", n, err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(errors.ErrCodeIO, err, "flush trails")
	}
	return n, nil
}

// WriteDocument drains src and writes a single JSON document.
func WriteDocument(w io.Writer, src Source, g *Graph, idx *Index, stats *pathcover.Stats) (int, error) {
	doc := Document{Stats: stats, Trails: []Trail{}}
	for {
		t, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return len(doc.Trails), err
		}
		doc.Trails = append(doc.Trails, Resolve(g, idx, len(doc.Trails), t))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return len(doc.Trails), fmt.Errorf("encode: %w", err)
	}
	return len(doc.Trails), nil
}

// WriteTrails writes src in the given format.
func WriteTrails(w io.Writer, format string, src Source, g *Graph, idx *Index, stats *pathcover.Stats) (int, error) {
	if err := ValidateFormat(format); err != nil {
		return 0, err
	}
	if format == FormatJSON {
		return WriteDocument(w, src, g, idx, stats)
	}
	return WriteJSONL(w, src, g, idx)
}

// ExportTrails writes src to a file at path.
func ExportTrails(path, format string, src Source, g *Graph, idx *Index, stats *pathcover.Stats) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	n, err := WriteTrails(f, format, src, g, idx, stats)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(errors.ErrCodeIO, cerr, "close %s", path)
	}
	return n, err
}

// ReadTrails decodes trails written in either format. Stats is nil for JSON
// Lines input.
func ReadTrails(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	doc := &Document{}
	for i := 0; ; i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == io.EOF {
			return doc, nil
		} else if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode trail %d", i)
		}

		if i == 0 && isDocument(raw) {
			if err := json.Unmarshal(raw, doc); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode trail document")
			}
			return doc, nil
		}
		var t Trail
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode trail %d", i)
		}
		doc.Trails = append(doc.Trails, t)
	}
}

// ImportTrails reads a trail file at path.
func ImportTrails(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadTrails(f)
}

func isDocument(raw json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &probe); err != nil {
		return false
	}
	_, ok := probe["trails"]
	return ok
}
