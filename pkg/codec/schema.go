package codec

import (
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/model"
)

// =============================================================================
// Write side
// =============================================================================

// encPackage is a package already written to the document.
type encPackage struct {
	id      int
	classes []*encClass // indexed by class id; nil slots are free
}

// allocate returns the first free class id.
func (p *encPackage) allocate() int {
	for i, c := range p.classes {
		if c == nil {
			return i
		}
	}
	p.classes = append(p.classes, nil)
	return len(p.classes) - 1
}

// encClass is a class already written to the document.
type encClass struct {
	pkgID    int
	id       int
	features []encFeature // indexed by feature id
}

type encFeature struct {
	feature *model.Feature
	kind    Kind
	// named is set once the feature name has been written.
	named bool
	// transient features are never written.
	transient bool
	// proxyTransient features are skipped for objects written as proxies.
	proxyTransient bool
}

func newEncFeature(f *model.Feature) encFeature {
	kind := KindOf(f)
	return encFeature{
		feature:        f,
		kind:           kind,
		transient:      f.IsTransient() || f.IsContainer() && !f.IsResolveProxies(),
		proxyTransient: f.IsReference() || kind == KindFeatureMap,
	}
}

// pkg interns p and returns its reference: the bare id when p was written
// before, [id, nsURI, locationRef] otherwise.
func (e *encoder) pkg(p *model.Package) (*encPackage, any) {
	if pd, ok := e.packages[p]; ok {
		return pd, pd.id
	}
	pd := &encPackage{
		id:      len(e.packages),
		classes: make([]*encClass, len(p.Classifiers())),
	}
	e.packages[p] = pd
	e.stats.Packages++
	return pd, []any{pd.id, p.NsURI(), e.uriRef(p.URI())}
}

// class interns c and returns its reference: [pkgID, classID] when c was
// written before, [packageRef, classID, name] otherwise.
func (e *encoder) class(c *model.Class) (*encClass, []any) {
	if cd, ok := e.classes[c]; ok {
		return cd, []any{cd.pkgID, cd.id}
	}
	pd, pref := e.pkg(c.Package())
	cd := &encClass{pkgID: pd.id, id: pd.allocate()}
	features := c.Features()
	cd.features = make([]encFeature, len(features))
	for i, f := range features {
		cd.features[i] = newEncFeature(f)
	}
	pd.classes[cd.id] = cd
	e.classes[c] = cd
	e.stats.Classes++
	return cd, []any{pref, cd.id, c.Name()}
}

// =============================================================================
// Read side
// =============================================================================

type decPackage struct {
	pkg     *model.Package
	classes []*decClass // indexed by the writer's class id
}

type decClass struct {
	class    *model.Class
	features []*decFeature // indexed by the writer's feature id
}

// decFeature is resolved by name, so the writer's feature id may differ from
// the reader's.
type decFeature struct {
	feature *model.Feature
	kind    Kind
}

// grow extends s so that index i is valid.
func grow[T any](s []T, i int) []T {
	if i < len(s) {
		return s
	}
	return append(s, make([]T, i+1-len(s))...)
}

func (d *decoder) pkg(c *cursor) (*decPackage, error) {
	v, ok := c.next()
	if !ok {
		return nil, formatError("missing package reference")
	}
	arr, isArr := jsonval.Array(v)
	if !isArr {
		id, ok := jsonval.Int(v)
		if !ok {
			return nil, formatError("package reference must be an id or array, got %s", jsonval.Describe(v))
		}
		if id < 0 || int(id) >= len(d.packages) {
			return nil, errors.New(errors.ErrCodeUnknownReference, "package id %d was never defined", id)
		}
		return d.packages[id], nil
	}

	pc := cursor{items: arr}
	id, err := d.index(&pc, "package id")
	if err != nil {
		return nil, err
	}
	if id != len(d.packages) {
		return nil, formatError("package id %d out of sequence, want %d", id, len(d.packages))
	}
	nsv, _ := pc.next()
	nsURI, ok := jsonval.String(nsv)
	if !ok {
		return nil, formatError("package %d has no namespace URI", id)
	}
	loc, err := d.uri(&pc)
	if err != nil {
		return nil, err
	}

	p := d.registry.Package(nsURI)
	if p == nil && loc != "" {
		p = d.registry.PackageAt(location.TrimFragment(loc))
	}
	if p == nil {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "unknown package %q (location %q)", nsURI, loc)
	}
	pd := &decPackage{pkg: p, classes: make([]*decClass, len(p.Classifiers()))}
	d.packages = append(d.packages, pd)
	d.stats.Packages++
	return pd, nil
}

func (d *decoder) class(c *cursor) (*decClass, error) {
	v, ok := c.next()
	arr, isArr := jsonval.Array(v)
	if !ok || !isArr {
		return nil, formatError("class reference must be an array, got %s", jsonval.Describe(v))
	}
	cc := cursor{items: arr}
	pd, err := d.pkg(&cc)
	if err != nil {
		return nil, err
	}
	id, err := d.index(&cc, "class id")
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, formatError("negative class id %d", id)
	}
	pd.classes = grow(pd.classes, id)
	if cd := pd.classes[id]; cd != nil {
		return cd, nil
	}

	nv, _ := cc.next()
	name, ok := jsonval.String(nv)
	if !ok {
		return nil, errors.New(errors.ErrCodeSchemaMismatch,
			"class %d of package %q is used before its name is defined", id, pd.pkg.NsURI())
	}
	cls := pd.pkg.Class(name)
	if cls == nil {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "package %q has no class %q", pd.pkg.NsURI(), name)
	}
	cd := &decClass{class: cls, features: make([]*decFeature, cls.FeatureCount())}
	pd.classes[id] = cd
	d.stats.Classes++
	return cd, nil
}

// feature returns the feature with the writer's id. The first occurrence of
// an id carries the feature name, read from c.
func (d *decoder) feature(cd *decClass, id int, c *cursor) (*decFeature, error) {
	if id < 0 {
		return nil, formatError("negative feature id %d", id)
	}
	cd.features = grow(cd.features, id)
	if fd := cd.features[id]; fd != nil {
		return fd, nil
	}
	nv, _ := c.next()
	name, ok := jsonval.String(nv)
	if !ok {
		return nil, errors.New(errors.ErrCodeSchemaMismatch,
			"feature %d of class %q is used before its name is defined", id, cd.class.Name())
	}
	f := cd.class.FeatureByName(name)
	if f == nil {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "class %q has no feature %q", cd.class.Name(), name)
	}
	fd := &decFeature{feature: f, kind: KindOf(f)}
	cd.features[id] = fd
	d.stats.Features++
	return fd, nil
}
