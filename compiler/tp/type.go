// Package tp carries the type-checker's view of types as far as the
// mid-level IR needs it: opaque display handles plus aggregate
// descriptors whose ordered variant and field lists drive successor
// labeling and rendering. Nothing here is inspected any deeper.
package tp

type (
	// Type is an opaque type value in display form.
	Type string

	// Item is a path to a named item (function, static, const).
	Item string

	// Region is an opaque lifetime value.
	Region string

	// Substs is a generic instantiation list.
	Substs []Type

	// Adt describes a struct or enum as an ordered list of variants.
	// A struct is an Adt with a single variant.
	Adt struct {
		Name     string
		Variants []Variant
	}

	Variant struct {
		Name   string
		Kind   VariantKind
		Fields []Field
	}

	Field struct {
		Name string
		Type Type
	}

	VariantKind int
)

const (
	// Unit variant: no fields.
	Unit VariantKind = iota
	// Tuple variant: positional fields.
	Tuple
	// Struct variant: named fields.
	Struct
)

func (a *Adt) Variant(i int) *Variant {
	return &a.Variants[i]
}
