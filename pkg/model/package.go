package model

import (
	"fmt"
	"slices"
	"strings"
)

// Classifier is a named type declared in a package: a [*Class], a [*DataType]
// or an [*Enum].
type Classifier interface {
	Name() string
	Package() *Package
	classifier()
}

// Package is a namespace of classifiers.
//
// The namespace URI identifies the package in documents. The location names
// the document that defines the package and is used as a fallback when a
// reader does not know the namespace URI.
type Package struct {
	name     string
	nsURI    string
	location string

	classifiers []Classifier
	byName      map[string]Classifier
}

// NewPackage creates an empty package.
func NewPackage(name, nsURI string) *Package {
	return &Package{
		name:   name,
		nsURI:  nsURI,
		byName: make(map[string]Classifier),
	}
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// NsURI returns the namespace URI.
func (p *Package) NsURI() string { return p.nsURI }

// Location returns the location of the defining document, or "" if unset.
func (p *Package) Location() string { return p.location }

// SetLocation sets the location of the defining document.
func (p *Package) SetLocation(location string) { p.location = location }

// URI returns the URI of the package object itself: its defining document
// (the namespace URI when no location is set) with the root fragment "/".
func (p *Package) URI() string {
	loc := p.location
	if loc == "" {
		loc = p.nsURI
	}
	return loc + "#/"
}

// Classifiers returns the classifiers in declaration order.
func (p *Package) Classifiers() []Classifier {
	return slices.Clone(p.classifiers)
}

// Classifier returns the classifier with the given name, or nil.
func (p *Package) Classifier(name string) Classifier {
	return p.byName[name]
}

// Class returns the class with the given name, or nil if there is no such
// classifier or it is not a class.
func (p *Package) Class(name string) *Class {
	c, _ := p.byName[name].(*Class)
	return c
}

// NewClass declares a class in the package.
// It panics if a classifier with the same name already exists.
func (p *Package) NewClass(name string) *Class {
	c := &Class{name: name, pkg: p}
	p.add(c)
	return c
}

// NewDataType declares a data type with the given value kind and the default
// string conversion for that kind.
// It panics if a classifier with the same name already exists.
func (p *Package) NewDataType(name string, kind ValueKind) *DataType {
	d := &DataType{name: name, pkg: p, kind: kind}
	p.add(d)
	return d
}

// NewEnum declares an enumeration. Literals without a Literal string use
// their Name.
// It panics if a classifier with the same name already exists.
func (p *Package) NewEnum(name string, literals ...EnumLiteral) *Enum {
	e := &Enum{name: name, pkg: p}
	for _, l := range literals {
		e.AddLiteral(l)
	}
	p.add(e)
	return e
}

func (p *Package) add(c Classifier) {
	if _, dup := p.byName[c.Name()]; dup {
		panic(fmt.Sprintf("model: duplicate classifier %q in package %q", c.Name(), p.name))
	}
	p.classifiers = append(p.classifiers, c)
	p.byName[c.Name()] = c
}

// =============================================================================
// Registry
// =============================================================================

// Registry maps namespace URIs and locations to packages.
//
// Decoders look packages up by namespace URI first and by location second.
// A registry is plain configuration handed to each decode call.
type Registry struct {
	byNsURI    map[string]*Package
	byLocation map[string]*Package
	order      []*Package
}

// NewRegistry creates a registry holding pkgs.
func NewRegistry(pkgs ...*Package) *Registry {
	r := &Registry{
		byNsURI:    make(map[string]*Package),
		byLocation: make(map[string]*Package),
	}
	for _, p := range pkgs {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any package with the same namespace URI.
func (r *Registry) Register(p *Package) {
	if _, ok := r.byNsURI[p.nsURI]; !ok {
		r.order = append(r.order, p)
	} else {
		r.order = slices.DeleteFunc(r.order, func(q *Package) bool { return q.nsURI == p.nsURI })
		r.order = append(r.order, p)
	}
	r.byNsURI[p.nsURI] = p
	if p.location != "" {
		r.byLocation[p.location] = p
	}
}

// Package returns the package registered under nsURI, or nil.
func (r *Registry) Package(nsURI string) *Package {
	if r == nil {
		return nil
	}
	return r.byNsURI[nsURI]
}

// PackageAt returns the package defined at location, or nil.
// A fragment on location is ignored.
func (r *Registry) PackageAt(location string) *Package {
	if r == nil {
		return nil
	}
	if i := strings.IndexByte(location, '#'); i >= 0 {
		location = location[:i]
	}
	if p, ok := r.byLocation[location]; ok {
		return p
	}
	return r.byNsURI[location]
}

// Packages returns the registered packages in registration order.
func (r *Registry) Packages() []*Package {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}
