package descriptions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"go.yaml.in/yaml/v3"
)

// TaskDescriptions maps a bare task id (e.g., "prp") to its free-text description.
type TaskDescriptions map[string]string

// ColumnDescriptions maps a bare task id to the metadata of its event columns.
type ColumnDescriptions map[string]*Columns

// Tables bundles the two lookup tables loaded from one descriptions file.
type Tables struct {
	Tasks   TaskDescriptions   `yaml:"tasks"`
	Columns ColumnDescriptions `yaml:"columns"`
}

// Column describes one column of an events file, using the BIDS sidecar keys.
// A Column decoded from a descriptions file remembers which keys it was given
// and marshals exactly those, empty values included, in source order. A
// Column built in code marshals its non-empty fields.
type Column struct {
	LongName    string
	Description string
	Levels      Levels
	Units       string
	TermURL     string
	HED         string

	keys []string
}

// Column keys in their canonical order.
const (
	keyLongName    = "LongName"
	keyDescription = "Description"
	keyLevels      = "Levels"
	keyUnits       = "Units"
	keyTermURL     = "TermURL"
	keyHED         = "HED"
)

var columnKeys = []string{keyLongName, keyDescription, keyLevels, keyUnits, keyTermURL, keyHED}

// stringField returns the string field stored under key, or nil for Levels
// and unknown keys.
func (c *Column) stringField(key string) *string {
	switch key {
	case keyLongName:
		return &c.LongName
	case keyDescription:
		return &c.Description
	case keyUnits:
		return &c.Units
	case keyTermURL:
		return &c.TermURL
	case keyHED:
		return &c.HED
	}
	return nil
}

// Keys returns the keys the column marshals, in output order.
func (c Column) Keys() []string {
	if c.keys != nil {
		return append([]string(nil), c.keys...)
	}
	var keys []string
	for _, key := range columnKeys {
		if key == keyLevels {
			if len(c.Levels) > 0 {
				keys = append(keys, key)
			}
			continue
		}
		if *c.stringField(key) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// UnmarshalYAML decodes a mapping node and records the keys present.
func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a column must be a mapping", node.Line)
	}
	*c = Column{keys: []string{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		var err error
		if key == keyLevels {
			err = value.Decode(&c.Levels)
		} else if field := c.stringField(key); field != nil {
			err = value.Decode(field)
		} else {
			return fmt.Errorf("line %d: unknown column key %q", node.Content[i].Line, key)
		}
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", value.Line, key, err)
		}
		if !slices.Contains(c.keys, key) {
			c.keys = append(c.keys, key)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Column) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		var value any = c.Levels
		if field := c.stringField(key); field != nil {
			value = *field
		}
		if err := writeJSONPair(&buf, key, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Level maps one raw value of a categorical column to its meaning.
type Level struct {
	Value   string
	Meaning string
}

// Levels is an ordered value -> meaning mapping. It marshals to a JSON object
// in declaration order; a nil Levels marshals to {}.
type Levels []Level

// MarshalJSON implements json.Marshaler.
func (l Levels) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lv := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, lv.Value, lv.Meaning); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a mapping node, keeping key order. Non-string keys
// such as 0 or 1 are kept in their literal form.
func (l *Levels) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: Levels must be a mapping", node.Line)
	}
	out := make(Levels, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var meaning string
		if err := node.Content[i+1].Decode(&meaning); err != nil {
			return fmt.Errorf("line %d: level %q: %w", node.Content[i+1].Line, node.Content[i].Value, err)
		}
		out = append(out, Level{Value: node.Content[i].Value, Meaning: meaning})
	}
	*l = out
	return nil
}

// Columns is an ordered set of named column descriptions.
type Columns struct {
	names  []string
	byName map[string]Column
}

// NewColumns returns an empty column set.
func NewColumns() *Columns {
	return &Columns{byName: make(map[string]Column)}
}

// Set adds or replaces a column. A replaced column keeps its position.
func (c *Columns) Set(name string, col Column) {
	if c.byName == nil {
		c.byName = make(map[string]Column)
	}
	if _, ok := c.byName[name]; !ok {
		c.names = append(c.names, name)
	}
	c.byName[name] = col
}

// Get returns the column with the given name.
func (c *Columns) Get(name string) (Column, bool) {
	if c == nil {
		return Column{}, false
	}
	col, ok := c.byName[name]
	return col, ok
}

// Names returns the column names in declaration order.
func (c *Columns) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Len returns the number of columns.
func (c *Columns) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// UnmarshalYAML decodes a mapping node of column name -> Column, keeping key order.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: columns must be a mapping", node.Line)
	}
	*c = *NewColumns()
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var col Column
		if err := node.Content[i+1].Decode(&col); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		c.Set(name, col)
	}
	return nil
}

// MarshalJSON implements json.Marshaler, keeping declaration order.
func (c *Columns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, name, c.byName[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TaskIDs returns the union of task ids present in either table, sorted.
func (t *Tables) TaskIDs() []string {
	seen := make(map[string]bool)
	for id := range t.Tasks {
		seen[id] = true
	}
	for id := range t.Columns {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unpaired returns a message for every task id that appears in only one of
// the two tables. Such tasks cannot get a sidecar.
func (t *Tables) Unpaired() []string {
	var msgs []string
	for _, id := range t.TaskIDs() {
		_, hasTask := t.Tasks[id]
		_, hasCols := t.Columns[id]
		switch {
		case hasTask && !hasCols:
			msgs = append(msgs, fmt.Sprintf("task %q has a description but no column descriptions", id))
		case !hasTask && hasCols:
			msgs = append(msgs, fmt.Sprintf("task %q has column descriptions but no task description", id))
		}
	}
	return msgs
}

// writeJSONPair writes "key":value without HTML escaping.
func writeJSONPair(buf *bytes.Buffer, key string, value any) error {
	k, err := EncodeJSON(key)
	if err != nil {
		return err
	}
	v, err := EncodeJSON(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// EncodeJSON encodes v compactly without escaping <, > and &, which appear in
// free-text descriptions.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
