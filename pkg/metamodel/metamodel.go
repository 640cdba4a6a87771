// Package metamodel loads package definitions from YAML or TOML files.
//
// A definition declares one package: its namespace URI, data types, enums and
// classes. Documents are only readable with a registry holding the packages
// they were written with, so the CLI takes definition files next to every
// document it decodes.
//
// # Format
//
//	name: library
//	ns_uri: http://example.com/library
//	enums:
//	  - name: Genre
//	    literals:
//	      - {name: fiction, value: 0}
//	      - {name: science, value: 1, literal: SCIENCE}
//	classes:
//	  - name: Library
//	    attributes:
//	      - {name: name, type: String}
//	    references:
//	      - {name: books, type: Book, many: true, containment: true, opposite: library}
//	  - name: Book
//	    attributes:
//	      - {name: genre, type: Genre}
//	    references:
//	      - {name: library, type: Library}
//
// Type names resolve to the package's own classifiers first, then to the
// builtin data types (String, Boolean, Byte, Char, Double, Float, Int, Long,
// Short, Date, FeatureMapEntry). Within a class, attributes are declared
// before references; inherited features come first.
package metamodel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/model"
)

// Definition is the file form of a package.
type Definition struct {
	Name      string        `yaml:"name" toml:"name"`
	NsURI     string        `yaml:"ns_uri" toml:"ns_uri"`
	Location  string        `yaml:"location,omitempty" toml:"location,omitempty"`
	DataTypes []DataTypeDef `yaml:"datatypes,omitempty" toml:"datatypes,omitempty"`
	Enums     []EnumDef     `yaml:"enums,omitempty" toml:"enums,omitempty"`
	Classes   []ClassDef    `yaml:"classes,omitempty" toml:"classes,omitempty"`
}

// DataTypeDef declares a data type with one of the value kinds of
// [model.ParseValueKind].
type DataTypeDef struct {
	Name string `yaml:"name" toml:"name"`
	Kind string `yaml:"kind" toml:"kind"`
}

type EnumDef struct {
	Name     string       `yaml:"name" toml:"name"`
	Literals []LiteralDef `yaml:"literals" toml:"literals"`
}

// LiteralDef declares an enum literal. Literal defaults to Name.
type LiteralDef struct {
	Name    string `yaml:"name" toml:"name"`
	Value   int    `yaml:"value" toml:"value"`
	Literal string `yaml:"literal,omitempty" toml:"literal,omitempty"`
}

type ClassDef struct {
	Name       string         `yaml:"name" toml:"name"`
	Abstract   bool           `yaml:"abstract,omitempty" toml:"abstract,omitempty"`
	SuperTypes []string       `yaml:"supertypes,omitempty" toml:"supertypes,omitempty"`
	Attributes []AttributeDef `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	References []ReferenceDef `yaml:"references,omitempty" toml:"references,omitempty"`
}

// AttributeDef declares an attribute. Default is parsed with the string
// conversion of the attribute type.
type AttributeDef struct {
	Name      string `yaml:"name" toml:"name"`
	Type      string `yaml:"type" toml:"type"`
	Many      bool   `yaml:"many,omitempty" toml:"many,omitempty"`
	Transient bool   `yaml:"transient,omitempty" toml:"transient,omitempty"`
	Default   string `yaml:"default,omitempty" toml:"default,omitempty"`
}

// ReferenceDef declares a reference. Opposite names a reference of the
// target class; declaring it on one end is enough.
type ReferenceDef struct {
	Name           string `yaml:"name" toml:"name"`
	Type           string `yaml:"type" toml:"type"`
	Many           bool   `yaml:"many,omitempty" toml:"many,omitempty"`
	Containment    bool   `yaml:"containment,omitempty" toml:"containment,omitempty"`
	ResolveProxies bool   `yaml:"resolve_proxies,omitempty" toml:"resolve_proxies,omitempty"`
	Transient      bool   `yaml:"transient,omitempty" toml:"transient,omitempty"`
	Opposite       string `yaml:"opposite,omitempty" toml:"opposite,omitempty"`
}

// Format is a definition file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidSchema, "unsupported definition file %q (must be .yaml, .yml or .toml)", path)
}

// Parse decodes a definition.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse yaml definition")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &def)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse toml definition")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "unknown key %q in toml definition", undecoded[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidSchema, "unknown definition format %q", format)
	}
	return &def, nil
}

// Marshal encodes a definition.
func Marshal(def *Definition, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(def); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSchema, "unknown definition format %q", format)
}

// Load reads and builds the package defined in path.
func Load(path string) (*model.Package, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definition %s", path)
		}
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, err := Build(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadRegistry builds a registry from definition files. Namespace URIs must
// be distinct.
func LoadRegistry(paths ...string) (*model.Registry, error) {
	reg := model.NewRegistry()
	for _, path := range paths {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		if reg.Package(p.NsURI()) != nil {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: namespace %q defined twice", path, p.NsURI())
		}
		reg.Register(p)
	}
	return reg, nil
}
