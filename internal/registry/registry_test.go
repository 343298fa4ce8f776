package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/astx"
)

func sealFile(file *astx.File) *Registry {
	b := NewBuilder()
	b.AddFile(file)
	return b.Seal()
}

func TestRegistry_LookupReturnsDefinitionWithFields(t *testing.T) {
	reg := sealFile(&astx.File{
		Path: "models.rs",
		TypeDefs: []astx.RawTypeDef{
			{
				Name:   "User",
				Kind:   astx.TypeDefStruct,
				Fields: []astx.Param{{Name: "name", Type: "String"}, {Name: "age", Type: "u32"}},
			},
		},
	})

	def, ok := reg.Lookup("User")
	require.True(t, ok)
	assert.Equal(t, "models.rs", def.File)

	fieldType, ok := reg.FieldType("User", "age")
	require.True(t, ok)
	assert.Equal(t, "u32", fieldType)
}

func TestRegistry_MethodsAttributedToReceiverType(t *testing.T) {
	reg := sealFile(&astx.File{
		Path: "server.go",
		TypeDefs: []astx.RawTypeDef{
			{Name: "Server", Kind: astx.TypeDefStruct},
		},
		Functions: []astx.FunctionSite{
			{Name: "Start", Kind: astx.FuncKindMethod, ReceiverType: "Server"},
			{Name: "Stop", Kind: astx.FuncKindMethod, ReceiverType: "Server"},
			{Name: "helper", Kind: astx.FuncKindFunction},
		},
	})

	assert.True(t, reg.HasMethod("Server", "Start"))
	assert.True(t, reg.HasMethod("Server", "Stop"))
	assert.False(t, reg.HasMethod("Server", "helper"))
}

func TestRegistry_MethodOnUncapturedTypeCreatesStub(t *testing.T) {
	reg := sealFile(&astx.File{
		Path: "ext.go",
		Functions: []astx.FunctionSite{
			{Name: "Process", Kind: astx.FuncKindMethod, ReceiverType: "BaseHandler"},
		},
	})

	assert.True(t, reg.HasMethod("BaseHandler", "Process"))
}

func TestRegistry_ImplementorsTracksTraitImpls(t *testing.T) {
	reg := sealFile(&astx.File{
		Path: "shapes.rs",
		TypeDefs: []astx.RawTypeDef{
			{Name: "Drawable", Kind: astx.TypeDefTrait},
			{Name: "Circle", Kind: astx.TypeDefStruct, Implements: []string{"Drawable"}},
			{Name: "Square", Kind: astx.TypeDefStruct, Implements: []string{"Drawable"}},
		},
	})

	impls := reg.Implementors("Drawable")
	assert.ElementsMatch(t, []string{"Circle", "Square"}, impls)
}

func TestBuilder_CollisionRecordedNotFatal(t *testing.T) {
	b := NewBuilder()
	b.AddFile(&astx.File{
		Path:     "a.go",
		TypeDefs: []astx.RawTypeDef{{Name: "Config", Kind: astx.TypeDefStruct}},
	})
	b.AddFile(&astx.File{
		Path:     "b.go",
		TypeDefs: []astx.RawTypeDef{{Name: "Config", Kind: astx.TypeDefStruct}},
	})

	require.Len(t, b.Collisions(), 1)

	// Last definition wins; resolution still works.
	reg := b.Seal()
	def, ok := reg.Lookup("Config")
	require.True(t, ok)
	assert.Equal(t, "b.go", def.File)
}

func TestRegistry_TypesInFile(t *testing.T) {
	b := NewBuilder()
	b.AddFile(&astx.File{
		Path: "a.go",
		TypeDefs: []astx.RawTypeDef{
			{Name: "A1", Kind: astx.TypeDefStruct},
			{Name: "A2", Kind: astx.TypeDefStruct},
		},
	})
	b.AddFile(&astx.File{
		Path:     "b.go",
		TypeDefs: []astx.RawTypeDef{{Name: "B1", Kind: astx.TypeDefStruct}},
	})
	reg := b.Seal()

	names := []string{}
	for _, d := range reg.TypesInFile("a.go") {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"A1", "A2"}, names)
}
