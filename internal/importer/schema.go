package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names accepted by Decode and Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// TemplateSchema is the file format for importing and exporting a template.
type TemplateSchema struct {
	Template TemplateHeader `json:"template" yaml:"template"`
	Tree     []ItemImport   `json:"tree" yaml:"tree"`
	Groups   []GroupImport  `json:"groups" yaml:"groups"`
}

type TemplateHeader struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ItemImport is a node of the template tree. Kind defaults to "group" when
// the node has children and to "leaf" otherwise.
type ItemImport struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Kind      string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Collapsed bool         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Children  []ItemImport `json:"children,omitempty" yaml:"children,omitempty"`
}

type GroupImport struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Sections []SectionImport `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type SectionImport struct {
	ID           string         `json:"data_section_id" yaml:"data_section_id"`
	Title        string         `json:"title,omitempty" yaml:"title,omitempty"`
	ShowRowCount bool           `json:"show_row_count,omitempty" yaml:"show_row_count,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and parses a template file.
func LoadFile(path string) (*TemplateSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := Decode(bytes.NewReader(data), FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return schema, nil
}

func Decode(r io.Reader, format string) (*TemplateSchema, error) {
	var schema TemplateSchema
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&schema); err != nil && err != io.EOF {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return &schema, nil
}

func Encode(w io.Writer, schema *TemplateSchema, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
