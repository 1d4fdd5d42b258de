package proto

import (
	"fmt"
	"os"

	"github.com/ehrlich-b/go-wl/internal/wire"
	"gopkg.in/yaml.v3"
)

// yamlArgType maps the short codes used in a YAML catalog file to the
// codec's ArgType enum, mirroring the single-letter signature characters
// the upstream protocol XML uses (i, u, f, s, o, n, a, h) but spelled out
// for readability in a hand-edited config file.
var yamlArgType = map[string]wire.ArgType{
	"int32":    wire.ArgInt32,
	"uint32":   wire.ArgUint32,
	"fixed":    wire.ArgFixed,
	"string":   wire.ArgString,
	"object":   wire.ArgObjectID,
	"new_id":   wire.ArgNewID,
	"array":    wire.ArgArray,
	"fd":       wire.ArgFD,
}

type yamlMessage struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

type yamlInterface struct {
	Name     string        `yaml:"name"`
	Version  uint32        `yaml:"version"`
	Requests []yamlMessage `yaml:"requests"`
	Events   []yamlMessage `yaml:"events"`
}

type yamlCatalog struct {
	Interfaces []yamlInterface `yaml:"interfaces"`
}

// Catalog is a mutable, extensible interface table: the Builtin core
// interfaces plus whatever a deployment layers on top via LoadYAML. A
// server that wants to advertise compositor-specific globals (e.g. a
// layer-shell extension) constructs one of these instead of consulting
// Builtin directly.
type Catalog struct {
	byName map[string]*InterfaceDescriptor
}

// NewCatalog returns a Catalog seeded with the builtin core interfaces.
func NewCatalog() *Catalog {
	c := &Catalog{byName: make(map[string]*InterfaceDescriptor, len(Builtin))}
	for name, d := range Builtin {
		c.byName[name] = d
	}
	return c
}

// Lookup returns the descriptor for name, or nil if unknown.
func (c *Catalog) Lookup(name string) *InterfaceDescriptor {
	return c.byName[name]
}

// LoadYAMLFile reads a declarative interface extension file and merges
// its interfaces into the catalog. A name collision with an existing
// entry (builtin or previously loaded) is an error: extensions add
// interfaces, they don't redefine core ones.
func (c *Catalog) LoadYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("proto: read catalog %s: %w", path, err)
	}
	return c.LoadYAML(data)
}

// LoadYAML parses and merges raw YAML catalog bytes.
func (c *Catalog) LoadYAML(data []byte) error {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("proto: parse catalog: %w", err)
	}
	for _, iface := range doc.Interfaces {
		if _, exists := c.byName[iface.Name]; exists {
			return fmt.Errorf("proto: interface %q already defined", iface.Name)
		}
		d, err := buildDescriptor(iface)
		if err != nil {
			return fmt.Errorf("proto: interface %q: %w", iface.Name, err)
		}
		c.byName[iface.Name] = d
	}
	return nil
}

func buildDescriptor(iface yamlInterface) (*InterfaceDescriptor, error) {
	d := &InterfaceDescriptor{Name: iface.Name, Version: iface.Version}
	reqs, err := buildMessages(iface.Requests)
	if err != nil {
		return nil, err
	}
	events, err := buildMessages(iface.Events)
	if err != nil {
		return nil, err
	}
	d.Requests = reqs
	d.Events = events
	return d, nil
}

func buildMessages(in []yamlMessage) ([]MessageSignature, error) {
	out := make([]MessageSignature, 0, len(in))
	for _, m := range in {
		sig := make(wire.Signature, 0, len(m.Args))
		for _, a := range m.Args {
			t, ok := yamlArgType[a]
			if !ok {
				return nil, fmt.Errorf("message %q: unknown arg type %q", m.Name, a)
			}
			sig = append(sig, t)
		}
		out = append(out, MessageSignature{Name: m.Name, ArgumentTypes: sig, SinceVersion: 1})
	}
	return out, nil
}
