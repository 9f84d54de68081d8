package descriptions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Format identifies the encoding of a descriptions file.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported descriptions file %s: want .yaml, .yml, .json or .toml", path)
	}
}

// Load reads, validates and decodes a descriptions file.
func Load(path string) (*Tables, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	tables, err := Parse(data, format)
	if err != nil {
		var invalid *InvalidError
		if errors.As(err, &invalid) {
			invalid.Source = path
			return nil, invalid
		}
		return nil, fmt.Errorf("parsing descriptions %s: %w", path, err)
	}
	return tables, nil
}

// Parse validates data against the descriptions schema and decodes it.
// Schema violations are returned as *InvalidError.
func Parse(data []byte, format Format) (*Tables, error) {
	yamlData, err := toYAML(data, format)
	if err != nil {
		return nil, err
	}

	result, err := validateYAML(yamlData)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidError{Issues: result.Issues}
	}

	var tables Tables
	if err := yaml.Unmarshal(yamlData, &tables); err != nil {
		return nil, fmt.Errorf("decoding tables: %w", err)
	}
	if tables.Tasks == nil {
		tables.Tasks = TaskDescriptions{}
	}
	if tables.Columns == nil {
		tables.Columns = ColumnDescriptions{}
	}
	return &tables, nil
}

// toYAML brings every supported format onto the YAML decoding path. JSON is
// rebuilt as a node tree and keeps its key order; TOML goes through a generic
// map and comes out with sorted keys.
func toYAML(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return data, nil
	case FormatJSON:
		node, err := decodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		out, err := yaml.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("converting JSON to YAML: %w", err)
		}
		return out, nil
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
		out, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("converting TOML to YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown descriptions format %q", format)
	}
}

// decodeJSON reads a single JSON value into a YAML node tree, keeping object
// key order. A repeated key keeps its first position and takes the last value.
func decodeJSON(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	node, err := jsonNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level value")
	}
	return node, nil
}

func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		}
		return nil, fmt.Errorf("unexpected %q", v)
	case string:
		return scalarNode("!!str", v), nil
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return scalarNode("!!float", v.String()), nil
		}
		return scalarNode("!!int", v.String()), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v)), nil
	case nil:
		return scalarNode("!!null", "null"), nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func jsonObject(dec *json.Decoder) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		value, err := jsonNode(dec)
		if err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			node.Content[i+1] = value
			continue
		}
		index[key] = len(node.Content)
		node.Content = append(node.Content, scalarNode("!!str", key), value)
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func jsonArray(dec *json.Decoder) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for dec.More() {
		value, err := jsonNode(dec)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, value)
	}
	// Closing bracket.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
