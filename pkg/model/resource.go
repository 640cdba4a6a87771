package model

import (
	"slices"
	"strconv"
	"strings"
)

// Resource is a document: a URI and an ordered list of root objects.
type Resource struct {
	uri      string
	set      *ResourceSet
	contents *List
}

// NewResource creates a resource that belongs to no resource set.
func NewResource(uri string) *Resource {
	r := &Resource{uri: uri}
	r.contents = &List{resource: r, unique: true}
	return r
}

// URI returns the resource URI.
func (r *Resource) URI() string { return r.uri }

// SetURI changes the resource URI.
func (r *Resource) SetURI(uri string) {
	if r.set != nil {
		delete(r.set.byURI, r.uri)
		r.set.byURI[uri] = r
	}
	r.uri = uri
}

// ResourceSet returns the owning set, or nil.
func (r *Resource) ResourceSet() *ResourceSet { return r.set }

// Contents returns the root objects.
func (r *Resource) Contents() *List { return r.contents }

// Roots returns a copy of the root objects.
func (r *Resource) Roots() []*Object { return r.contents.Objects() }

// attach makes o a root of r.
func (r *Resource) attach(o *Object) {
	if prev := o.directResource; prev != nil && prev != r {
		prev.contents.basicRemove(o)
	}
	if c := o.container; c != nil && !o.containerFeature.resolveProxies {
		c.basicRemove(o.containerFeature, o)
		o.container, o.containerFeature = nil, nil
	}
	o.directResource = r
}

// Fragment returns the path of o within r: "/" for a sole root, "/i" for the
// root at index i, and "<parent>/@feature" or "<parent>/@feature.i" for
// contained objects. It returns "" if o is not in r.
func (r *Resource) Fragment(o *Object) string {
	if o.directResource == r {
		i := r.contents.IndexOf(o)
		if i < 0 {
			return ""
		}
		if r.contents.Len() == 1 {
			return "/"
		}
		return "/" + strconv.Itoa(i)
	}
	if o.container == nil {
		return ""
	}
	parent := r.Fragment(o.container)
	if parent == "" {
		return ""
	}
	f := o.containerFeature
	seg := parent + "/@" + f.name
	if f.many {
		seg += "." + strconv.Itoa(o.container.List(f).IndexOf(o))
	}
	return seg
}

// ObjectAt returns the object at fragment, or nil.
func (r *Resource) ObjectAt(fragment string) *Object {
	if !strings.HasPrefix(fragment, "/") {
		return nil
	}
	segs := strings.Split(fragment[1:], "/")
	root := 0
	if segs[0] != "" {
		n, err := strconv.Atoi(segs[0])
		if err != nil {
			return nil
		}
		root = n
	}
	if root < 0 || root >= r.contents.Len() {
		return nil
	}
	o, _ := r.contents.At(root).(*Object)
	for _, seg := range segs[1:] {
		if o == nil || !strings.HasPrefix(seg, "@") {
			return nil
		}
		name, idx, many := strings.Cut(seg[1:], ".")
		f := o.class.FeatureByName(name)
		if f == nil || !f.containment {
			return nil
		}
		if !many {
			o, _ = o.Get(f).(*Object)
			continue
		}
		i, err := strconv.Atoi(idx)
		l, ok := o.Get(f).(*List)
		if err != nil || !ok || i < 0 || i >= l.Len() {
			return nil
		}
		o, _ = l.At(i).(*Object)
	}
	return o
}

// Walk visits every object of r in pre-order: each root, then its contents
// through containment features. Returning false from fn skips the object's
// children.
func (r *Resource) Walk(fn func(*Object) bool) {
	for _, root := range r.contents.Objects() {
		walk(root, fn)
	}
}

func walk(o *Object, fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, f := range o.class.features() {
		if !f.containment || !o.IsSet(f) {
			continue
		}
		if f.many {
			for _, c := range o.List(f).Objects() {
				walk(c, fn)
			}
		} else if c, ok := o.Get(f).(*Object); ok {
			walk(c, fn)
		}
	}
}

// AllObjects returns every object of r in [Resource.Walk] order.
func (r *Resource) AllObjects() []*Object {
	var out []*Object
	r.Walk(func(o *Object) bool {
		out = append(out, o)
		return true
	})
	return out
}

// =============================================================================
// Resource sets
// =============================================================================

// ResourceSet is a group of resources whose cross-document references can be
// resolved against each other.
type ResourceSet struct {
	resources []*Resource
	byURI     map[string]*Resource
	registry  *Registry
}

// NewResourceSet creates an empty set. The registry supplies the packages
// used to decode documents into the set's resources; it may be nil.
func NewResourceSet(registry *Registry) *ResourceSet {
	if registry == nil {
		registry = NewRegistry()
	}
	return &ResourceSet{byURI: make(map[string]*Resource), registry: registry}
}

// Registry returns the package registry.
func (s *ResourceSet) Registry() *Registry { return s.registry }

// CreateResource creates a resource with the given URI, replacing any resource
// with the same URI.
func (s *ResourceSet) CreateResource(uri string) *Resource {
	r := NewResource(uri)
	s.Add(r)
	return r
}

// Add adds r to the set.
func (s *ResourceSet) Add(r *Resource) {
	if prev, ok := s.byURI[r.uri]; ok && prev != r {
		s.Remove(prev)
	}
	if r.set == s {
		return
	}
	if r.set != nil {
		r.set.Remove(r)
	}
	r.set = s
	s.resources = append(s.resources, r)
	s.byURI[r.uri] = r
}

// Remove removes r from the set.
func (s *ResourceSet) Remove(r *Resource) {
	if r.set != s {
		return
	}
	s.resources = slices.DeleteFunc(s.resources, func(x *Resource) bool { return x == r })
	if s.byURI[r.uri] == r {
		delete(s.byURI, r.uri)
	}
	r.set = nil
}

// Resources returns the resources in insertion order.
func (s *ResourceSet) Resources() []*Resource { return slices.Clone(s.resources) }

// Resource returns the resource with the given URI, or nil.
func (s *ResourceSet) Resource(uri string) *Resource { return s.byURI[uri] }

// Object returns the object identified by an absolute URI with fragment, or
// nil if its resource is not in the set.
func (s *ResourceSet) Object(uri string) *Object {
	base, frag, ok := strings.Cut(uri, "#")
	if !ok {
		return nil
	}
	r := s.byURI[base]
	if r == nil {
		return nil
	}
	return r.ObjectAt(frag)
}

// Resolve returns the object a proxy stands in for when its document is in the
// set, and o itself otherwise.
func (s *ResourceSet) Resolve(o *Object) *Object {
	if o == nil || !o.IsProxy() {
		return o
	}
	if target := s.Object(o.proxyURI); target != nil {
		return target
	}
	return o
}
