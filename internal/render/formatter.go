package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"admincfg/internal/dsl"
)

// Formatter writes plain data in one output format.
type Formatter interface {
	Name() string
	Encode(w io.Writer, v any) error
}

// JSONFormatter writes indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAMLFormatter writes YAML with two-space indentation.
type YAMLFormatter struct{}

func (YAMLFormatter) Name() string { return "yaml" }

func (YAMLFormatter) Encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(v)
}

// NewFormatter returns the formatter called name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "json":
		return JSONFormatter{}, nil
	case "yaml", "yml":
		return YAMLFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (allowed: json|yaml)", name)
}

// EntriesOutput is the envelope written for mapped entries.
type EntriesOutput struct {
	Entity string      `json:"entity" yaml:"entity"`
	View   string      `json:"view" yaml:"view"`
	Count  int         `json:"count" yaml:"count"`
	Data   []dsl.Entry `json:"data" yaml:"data"`
}

// WriteEntries writes entries mapped through v.
func WriteEntries(w io.Writer, f Formatter, v *dsl.View, entries []dsl.Entry) error {
	out := EntriesOutput{View: v.Name(), Count: len(entries), Data: entries}
	if e := v.Entity(); e != nil {
		out.Entity = e.Name()
	}
	if out.Data == nil {
		out.Data = []dsl.Entry{}
	}
	return f.Encode(w, out)
}

// ValidationOutput pairs an entry's identifier with its errors.
type ValidationOutput struct {
	IdentifierValue any              `json:"identifierValue" yaml:"identifierValue"`
	Errors          []dsl.FieldError `json:"errors" yaml:"errors"`
}
