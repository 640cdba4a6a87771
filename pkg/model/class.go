package model

import (
	"fmt"
	"slices"
)

// Class is a declared object type.
//
// A class's features are its supertypes' features, in supertype order, followed
// by the features it declares itself. A feature's id is its position in that
// list, so ids are stable only while the class hierarchy is not modified.
type Class struct {
	name     string
	pkg      *Package
	abstract bool

	supers []*Class
	subs   []*Class
	own    []*Feature

	// all and byName are derived from supers and own; nil means stale.
	all    []*Feature
	byName map[string]int
}

func (*Class) classifier() {}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Package returns the declaring package.
func (c *Class) Package() *Package { return c.pkg }

// Abstract reports whether the class cannot be instantiated.
func (c *Class) Abstract() bool { return c.abstract }

// SetAbstract marks the class abstract.
func (c *Class) SetAbstract(abstract bool) *Class {
	c.abstract = abstract
	return c
}

// SuperTypes returns the direct supertypes.
func (c *Class) SuperTypes() []*Class { return slices.Clone(c.supers) }

// AddSuperType appends a direct supertype.
func (c *Class) AddSuperType(super *Class) *Class {
	if slices.Contains(c.supers, super) {
		return c
	}
	if c.IsSuperTypeOf(super) {
		panic(fmt.Sprintf("model: class %q cannot inherit from its subtype %q", c.name, super.name))
	}
	c.supers = append(c.supers, super)
	super.subs = append(super.subs, c)
	c.invalidate()
	return c
}

// IsSuperTypeOf reports whether other is c or inherits from c.
func (c *Class) IsSuperTypeOf(other *Class) bool {
	if other == nil {
		return false
	}
	if other == c {
		return true
	}
	for _, s := range other.supers {
		if c.IsSuperTypeOf(s) {
			return true
		}
	}
	return false
}

// FeatureOptions configures a feature declared with [Class.AddAttribute] or
// [Class.AddReference].
type FeatureOptions struct {
	Many           bool // Multi-valued
	Containment    bool // References only: the target is owned by the source
	ResolveProxies bool // References only: the target may live in another document
	Transient      bool // Never serialized
	Default        any  // Attributes only: value of an unset single-valued attribute
}

// AddAttribute declares an attribute typed by a data type or enum.
func (c *Class) AddAttribute(name string, typ DataClassifier, opts FeatureOptions) *Feature {
	f := &Feature{
		name:         name,
		class:        c,
		typ:          typ,
		many:         opts.Many,
		transient:    opts.Transient,
		defaultValue: opts.Default,
	}
	if dt, ok := typ.(*DataType); ok && dt.kind == ValueFeatureMapEntry {
		f.many = true
	}
	c.addFeature(f)
	return f
}

// AddReference declares a reference to objects of class target.
func (c *Class) AddReference(name string, target *Class, opts FeatureOptions) *Feature {
	f := &Feature{
		name:           name,
		class:          c,
		typ:            target,
		reference:      true,
		many:           opts.Many,
		containment:    opts.Containment,
		resolveProxies: opts.ResolveProxies,
		transient:      opts.Transient,
	}
	c.addFeature(f)
	return f
}

func (c *Class) addFeature(f *Feature) {
	for _, g := range c.own {
		if g.name == f.name {
			panic(fmt.Sprintf("model: duplicate feature %q in class %q", f.name, c.name))
		}
	}
	c.own = append(c.own, f)
	c.invalidate()
}

func (c *Class) invalidate() {
	if c.all == nil {
		return
	}
	c.all, c.byName = nil, nil
	for _, s := range c.subs {
		s.invalidate()
	}
}

func (c *Class) features() []*Feature {
	if c.all != nil {
		return c.all
	}
	var all []*Feature
	seen := make(map[*Feature]bool)
	for _, s := range c.supers {
		for _, f := range s.features() {
			if !seen[f] {
				seen[f] = true
				all = append(all, f)
			}
		}
	}
	all = append(all, c.own...)
	if all == nil {
		all = []*Feature{}
	}
	byName := make(map[string]int, len(all))
	for i, f := range all {
		if _, dup := byName[f.name]; !dup {
			byName[f.name] = i
		}
	}
	c.all, c.byName = all, byName
	return all
}

// Features returns every feature of the class, inherited features first.
func (c *Class) Features() []*Feature { return slices.Clone(c.features()) }

// OwnFeatures returns the features the class declares itself.
func (c *Class) OwnFeatures() []*Feature { return slices.Clone(c.own) }

// FeatureCount returns the number of features, inherited ones included.
func (c *Class) FeatureCount() int { return len(c.features()) }

// Feature returns the feature with the given id, or nil if out of range.
func (c *Class) Feature(id int) *Feature {
	all := c.features()
	if id < 0 || id >= len(all) {
		return nil
	}
	return all[id]
}

// FeatureByName returns the feature with the given name, or nil.
func (c *Class) FeatureByName(name string) *Feature {
	c.features()
	if i, ok := c.byName[name]; ok {
		return c.all[i]
	}
	return nil
}

// FeatureID returns the id of f within c, or -1 if c has no such feature.
func (c *Class) FeatureID(f *Feature) int {
	c.features()
	if i, ok := c.byName[f.name]; ok && c.all[i] == f {
		return i
	}
	return slices.Index(c.all, f)
}

// New creates an instance. It panics if the class is abstract.
func (c *Class) New() *Object {
	if c.abstract {
		panic(fmt.Sprintf("model: cannot instantiate abstract class %q", c.name))
	}
	return &Object{class: c, values: make([]any, c.FeatureCount())}
}

// =============================================================================
// Features
// =============================================================================

// Feature is a property slot declared by a class.
type Feature struct {
	name  string
	class *Class
	typ   Classifier

	reference      bool
	many           bool
	containment    bool
	resolveProxies bool
	transient      bool
	opposite       *Feature
	defaultValue   any
}

// Name returns the feature name.
func (f *Feature) Name() string { return f.name }

// Class returns the declaring class.
func (f *Feature) Class() *Class { return f.class }

// Type returns the feature type: a *Class for references, a DataClassifier
// for attributes.
func (f *Feature) Type() Classifier { return f.typ }

// DataType returns the attribute type, or nil for references.
func (f *Feature) DataType() DataClassifier {
	d, _ := f.typ.(DataClassifier)
	return d
}

// ReferenceType returns the referenced class, or nil for attributes.
func (f *Feature) ReferenceType() *Class {
	c, _ := f.typ.(*Class)
	return c
}

// IsReference reports whether the feature is a reference.
func (f *Feature) IsReference() bool { return f.reference }

// IsAttribute reports whether the feature is an attribute.
func (f *Feature) IsAttribute() bool { return !f.reference }

// IsMany reports whether the feature is multi-valued.
func (f *Feature) IsMany() bool { return f.many }

// IsContainment reports whether the feature owns its targets.
func (f *Feature) IsContainment() bool { return f.containment }

// IsContainer reports whether the feature is the opposite of a containment,
// pointing from a child to its owner.
func (f *Feature) IsContainer() bool {
	return f.opposite != nil && f.opposite.containment
}

// IsResolveProxies reports whether targets may be proxies for objects in
// other documents.
func (f *Feature) IsResolveProxies() bool { return f.resolveProxies }

// IsTransient reports whether the feature is excluded from serialization.
func (f *Feature) IsTransient() bool { return f.transient }

// IsFeatureMap reports whether the feature holds a [FeatureMap].
func (f *Feature) IsFeatureMap() bool {
	dt, ok := f.typ.(*DataType)
	return ok && dt.kind == ValueFeatureMapEntry
}

// Opposite returns the opposite end of a bidirectional reference, or nil.
func (f *Feature) Opposite() *Feature { return f.opposite }

// DefaultValue returns the value of the feature when unset.
func (f *Feature) DefaultValue() any {
	if f.defaultValue != nil {
		return f.defaultValue
	}
	if f.reference || f.many {
		return nil
	}
	if d := f.DataType(); d != nil {
		return d.DefaultValue()
	}
	return nil
}

func (f *Feature) String() string {
	if f.class == nil {
		return f.name
	}
	return f.class.name + "." + f.name
}

// SetOpposites links two references as the ends of one bidirectional
// association. At most one end may be a containment; the other becomes its
// container end.
func SetOpposites(a, b *Feature) error {
	if !a.reference || !b.reference {
		return fmt.Errorf("opposites %s and %s must both be references", a, b)
	}
	if a.containment && b.containment {
		return fmt.Errorf("opposites %s and %s cannot both be containments", a, b)
	}
	if a.containment && b.many || b.containment && a.many {
		return fmt.Errorf("container end of %s and %s must be single-valued", a, b)
	}
	a.opposite, b.opposite = b, a
	return nil
}
