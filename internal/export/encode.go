// Package export writes extracted records as data files for the wiki
// renderers. Records pass through their JSON form first so that absent
// and malformed fields are pruned the same way in every format.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Format is an output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatYAML, FormatJSON, FormatTOML}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want yaml, json or toml)", s)
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string { return string(f) }

// Encode renders v in format f.
func Encode(v any, f Format) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		return encodeYAML(data)
	case FormatTOML:
		return encodeTOML(data)
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

// encodeYAML re-reads the JSON document as YAML, which keeps object key
// order, and writes it back in block style.
func encodeYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	blockStyle(&doc)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles JSON input comes with;
// the encoder still quotes strings that would read back as another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// encodeTOML writes the JSON document as TOML. TOML has no null and no
// key order, so nulls are dropped and tables come out sorted.
func encodeTOML(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	top, ok := prune(v).(map[string]any)
	if !ok {
		top = map[string]any{"items": prune(v)}
	}
	out, err := toml.Marshal(top)
	if err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return out, nil
}

// prune drops nulls and turns JSON numbers into int64 or float64.
func prune(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, x := range v {
			if x == nil {
				delete(v, k)
				continue
			}
			v[k] = prune(x)
		}
		return v
	case []any:
		out := v[:0]
		for _, x := range v {
			if x != nil {
				out = append(out, prune(x))
			}
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	}
	return v
}
