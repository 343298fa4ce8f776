// Package registry implements the type and symbol registry: a global
// map of struct/enum/trait definitions, field types, method names, and
// type aliases, keyed by type name. It is built once during parsing and
// sealed (read-only) before scoring begins, so it can be shared by
// reference across worker goroutines; reads take a shared read lock.
package registry

import (
	"fmt"
	"sync"

	"github.com/standardbeagle/lci/internal/astx"
)

// FieldRegistry holds a type's fields, either named (struct) or
// positional (tuple struct).
type FieldRegistry struct {
	Named      map[string]string // field name -> resolved type name
	Positional []string          // positional field types, for tuple structs
}

// TypeDefinition mirrors the data-model entry of the same name: a
// struct/enum/trait/alias with its fields, methods, and generics.
type TypeDefinition struct {
	Name     string
	File     string
	Kind     astx.TypeDefKind
	Fields   FieldRegistry
	Methods  []string
	Generics []string
	Implements []string
}

// Registry is the sealed, read-only view produced by Seal. It is safe
// for concurrent reads from any number of goroutines once returned;
// nothing after Seal ever mutates it.
type Registry struct {
	types      map[string]*TypeDefinition   // type name -> definition (last file wins on collision, recorded)
	byFile     map[string][]*TypeDefinition // file -> definitions declared there
	implementors map[string][]string        // trait/interface name -> implementing type names
	sealed     bool
	mu         sync.RWMutex
}

// Builder accumulates type definitions across files before Seal produces
// an immutable Registry. Builder itself is not safe for concurrent use;
// callers add all files from a single goroutine (typically Phase 1 of the
// orchestrator) and then call Seal once.
type Builder struct {
	types        map[string]*TypeDefinition
	byFile       map[string][]*TypeDefinition
	implementors map[string][]string
	collisions   []string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		types:        make(map[string]*TypeDefinition),
		byFile:       make(map[string][]*TypeDefinition),
		implementors: make(map[string][]string),
	}
}

// AddFile registers every type definition found in a parsed file.
func (b *Builder) AddFile(file *astx.File) {
	for _, raw := range file.TypeDefs {
		def := &TypeDefinition{
			Name:       raw.Name,
			File:       file.Path,
			Kind:       raw.Kind,
			Generics:   raw.Generics,
			Implements: raw.Implements,
			Fields:     FieldRegistry{Named: make(map[string]string)},
		}
		for _, f := range raw.Fields {
			def.Fields.Named[f.Name] = f.Type
		}
		if _, exists := b.types[raw.Name]; exists {
			b.collisions = append(b.collisions, fmt.Sprintf("%s (redefined in %s)", raw.Name, file.Path))
		}
		b.types[raw.Name] = def
		b.byFile[file.Path] = append(b.byFile[file.Path], def)
		for _, iface := range raw.Implements {
			b.implementors[iface] = append(b.implementors[iface], raw.Name)
		}
	}
	// Methods are attributed to their receiver type from function sites
	// rather than the type-def query, since tree-sitter grammars place
	// impl/method bodies outside the struct/class node itself.
	for _, fn := range file.Functions {
		if fn.Kind != astx.FuncKindMethod || fn.ReceiverType == "" {
			continue
		}
		if def, ok := b.types[fn.ReceiverType]; ok {
			def.Methods = append(def.Methods, fn.Name)
		} else {
			// Method on a type whose definition wasn't captured (e.g. an
			// external/embedded base type); register a stub so method
			// lookups still resolve.
			stub := &TypeDefinition{
				Name:   fn.ReceiverType,
				File:   file.Path,
				Kind:   astx.TypeDefStruct,
				Fields: FieldRegistry{Named: make(map[string]string)},
			}
			stub.Methods = append(stub.Methods, fn.Name)
			b.types[fn.ReceiverType] = stub
			b.byFile[file.Path] = append(b.byFile[file.Path], stub)
		}
	}
}

// Collisions returns every type name seen with more than one definition,
// for diagnostics only; registry resolution still proceeds using the
// last-seen definition, matching the "non-fatal, recorded" error taxonomy
// for resolution ambiguities.
func (b *Builder) Collisions() []string { return b.collisions }

// Seal finalizes the Builder into an immutable Registry.
func (b *Builder) Seal() *Registry {
	return &Registry{
		types:        b.types,
		byFile:       b.byFile,
		implementors: b.implementors,
		sealed:       true,
	}
}

// Lookup returns the TypeDefinition for a type name, if known.
func (r *Registry) Lookup(typeName string) (*TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[typeName]
	return t, ok
}

// HasMethod reports whether typeName declares method methodName directly.
func (r *Registry) HasMethod(typeName, methodName string) bool {
	t, ok := r.Lookup(typeName)
	if !ok {
		return false
	}
	for _, m := range t.Methods {
		if m == methodName {
			return true
		}
	}
	return false
}

// FieldType returns the resolved type of a named field on typeName.
func (r *Registry) FieldType(typeName, fieldName string) (string, bool) {
	t, ok := r.Lookup(typeName)
	if !ok {
		return "", false
	}
	typ, ok := t.Fields.Named[fieldName]
	return typ, ok
}

// Implementors returns every type name that declares traitOrInterface in
// its Implements list, used by the call-graph builder's TraitDispatch
// resolution: one edge per known implementor.
func (r *Registry) Implementors(traitOrInterface string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.implementors[traitOrInterface]
	cp := make([]string, len(out))
	copy(cp, out)
	return cp
}

// TypesInFile returns every TypeDefinition declared in a given file, used
// by detectors that need a file's full type inventory (god-object
// detection counts methods/fields per type).
func (r *Registry) TypesInFile(file string) []*TypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byFile[file]
}

// AllTypes returns every known TypeDefinition, in no particular order.
// Callers that need determinism should sort by (File, Name).
func (r *Registry) AllTypes() []*TypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*TypeDefinition, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out
}
