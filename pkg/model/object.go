package model

import "fmt"

// Object is an instance of a [Class].
//
// Values are accessed generically by feature or feature id. Multi-valued
// features are read as a [*List] (or a [*FeatureMap]) that is created on first
// access and then modified in place.
type Object struct {
	class  *Class
	values []any

	proxyURI string

	container        *Object
	containerFeature *Feature // containment feature of container holding o
	directResource   *Resource
}

// Class returns the object's class.
func (o *Object) Class() *Class { return o.class }

func (o *Object) slot(f *Feature) int {
	id := o.class.FeatureID(f)
	if id < 0 {
		panic(fmt.Sprintf("model: class %q has no feature %s", o.class.name, f))
	}
	if id >= len(o.values) {
		o.values = append(o.values, make([]any, o.class.FeatureCount()-len(o.values))...)
	}
	return id
}

// Get returns the value of f. Multi-valued features return a *List or a
// *FeatureMap; unset single-valued features return the feature default.
func (o *Object) Get(f *Feature) any {
	if f.IsContainer() {
		if o.containerFeature == f.opposite {
			return o.container
		}
		return nil
	}
	i := o.slot(f)
	if f.many {
		return o.manyValue(i, f)
	}
	if v := o.values[i]; v != nil {
		return v
	}
	return f.DefaultValue()
}

// GetAt returns the value of the feature with the given id.
func (o *Object) GetAt(id int) any {
	f := o.class.Feature(id)
	if f == nil {
		panic(fmt.Sprintf("model: class %q has no feature %d", o.class.name, id))
	}
	return o.Get(f)
}

func (o *Object) manyValue(i int, f *Feature) any {
	if v := o.values[i]; v != nil {
		return v
	}
	var v any
	if f.IsFeatureMap() {
		v = &FeatureMap{owner: o, feature: f}
	} else {
		v = &List{owner: o, feature: f, unique: f.reference}
	}
	o.values[i] = v
	return v
}

// List returns the list of a multi-valued, non feature-map feature.
func (o *Object) List(f *Feature) *List {
	l, ok := o.Get(f).(*List)
	if !ok {
		panic(fmt.Sprintf("model: feature %s is not a list", f))
	}
	return l
}

// FeatureMap returns the entries of a feature-map feature.
func (o *Object) FeatureMap(f *Feature) *FeatureMap {
	m, ok := o.Get(f).(*FeatureMap)
	if !ok {
		panic(fmt.Sprintf("model: feature %s is not a feature map", f))
	}
	return m
}

// Set assigns a single-valued feature. A nil value unsets it. Opposite ends
// and containment are kept consistent.
//
// Setting a container feature adds o to the new container's containment.
func (o *Object) Set(f *Feature, v any) {
	if f.many {
		panic(fmt.Sprintf("model: Set on multi-valued feature %s", f))
	}
	if f.IsContainer() {
		o.setContainer(f, v)
		return
	}
	i := o.slot(f)
	if !f.reference {
		o.values[i] = v
		return
	}
	target, _ := v.(*Object)
	if v != nil && target == nil {
		panic(fmt.Sprintf("model: feature %s expects *Object, got %T", f, v))
	}
	old, _ := o.values[i].(*Object)
	if old == target {
		return
	}
	if old != nil {
		o.inverseRemove(f, old)
	}
	if target == nil {
		o.values[i] = nil
		return
	}
	o.values[i] = target
	o.inverseAdd(f, target)
}

// SetAt assigns the single-valued feature with the given id.
func (o *Object) SetAt(id int, v any) {
	f := o.class.Feature(id)
	if f == nil {
		panic(fmt.Sprintf("model: class %q has no feature %d", o.class.name, id))
	}
	o.Set(f, v)
}

func (o *Object) setContainer(f *Feature, v any) {
	parent, _ := v.(*Object)
	if parent == nil {
		if o.containerFeature == f.opposite && o.container != nil {
			o.container.basicRemove(f.opposite, o)
			o.container, o.containerFeature = nil, nil
		}
		return
	}
	if f.opposite.many {
		parent.List(f.opposite).Add(o)
	} else {
		parent.Set(f.opposite, o)
	}
}

// Unset restores the default of f. Lists and feature maps are cleared.
func (o *Object) Unset(f *Feature) {
	if !f.many {
		o.Set(f, nil)
		return
	}
	switch v := o.Get(f).(type) {
	case *List:
		v.Clear()
	case *FeatureMap:
		v.items = v.items[:0]
	}
}

// IsSet reports whether f holds a value other than its default. Multi-valued
// features are set when non-empty.
func (o *Object) IsSet(f *Feature) bool {
	if f.IsContainer() {
		return o.containerFeature == f.opposite && o.container != nil
	}
	i := o.slot(f)
	v := o.values[i]
	if v == nil {
		return false
	}
	if f.many {
		switch l := v.(type) {
		case *List:
			return l.Len() > 0
		case *FeatureMap:
			return l.Len() > 0
		}
		return false
	}
	return !ValuesEqual(v, f.DefaultValue())
}

// IsSetAt reports whether the feature with the given id is set.
func (o *Object) IsSetAt(id int) bool {
	f := o.class.Feature(id)
	return f != nil && o.IsSet(f)
}

// IsProxy reports whether the object stands in for an object in another
// document.
func (o *Object) IsProxy() bool { return o.proxyURI != "" }

// ProxyURI returns the absolute URI of the object o stands in for.
func (o *Object) ProxyURI() string { return o.proxyURI }

// SetProxyURI turns o into a proxy, or back into a plain object when uri is
// empty.
func (o *Object) SetProxyURI(uri string) { o.proxyURI = uri }

// Container returns the owning object, or nil.
func (o *Object) Container() *Object { return o.container }

// ContainingFeature returns the containment feature of the container that
// holds o, or nil.
func (o *Object) ContainingFeature() *Feature { return o.containerFeature }

// DirectResource returns the resource o is a root of, or nil.
func (o *Object) DirectResource() *Resource { return o.directResource }

// Resource returns the resource that o belongs to: the direct resource of o
// or of its nearest container that has one.
func (o *Object) Resource() *Resource {
	for x := o; x != nil; x = x.container {
		if x.directResource != nil {
			return x.directResource
		}
	}
	return nil
}

// URI returns the absolute URI of o: its proxy URI, or its resource URI with
// its fragment. It is empty for objects outside any resource.
func (o *Object) URI() string {
	if o.proxyURI != "" {
		return o.proxyURI
	}
	r := o.Resource()
	if r == nil {
		return ""
	}
	return r.uri + "#" + r.Fragment(o)
}

func (o *Object) String() string {
	if o.proxyURI != "" {
		return fmt.Sprintf("%s(proxy %s)", o.class.name, o.proxyURI)
	}
	return fmt.Sprintf("%s@%p", o.class.name, o)
}

// =============================================================================
// Inverse maintenance
// =============================================================================

// inverseAdd runs after target was stored in f.
func (o *Object) inverseAdd(f *Feature, target *Object) {
	if f.containment {
		target.adopt(o, f)
		return
	}
	op := f.opposite
	if op == nil {
		return
	}
	if op.many {
		l := target.List(op)
		if !l.Contains(o) {
			l.basicAdd(o)
		}
		return
	}
	i := target.slot(op)
	if prev, _ := target.values[i].(*Object); prev != nil && prev != o {
		prev.basicRemove(f, target)
	}
	target.values[i] = o
}

// inverseRemove runs after target was removed from f.
func (o *Object) inverseRemove(f *Feature, target *Object) {
	if f.containment {
		if target.container == o && target.containerFeature == f {
			target.container, target.containerFeature = nil, nil
		}
		return
	}
	op := f.opposite
	if op == nil {
		return
	}
	target.basicRemove(op, o)
}

// adopt makes parent the container of o through containment feature f,
// removing o from its previous owner.
func (o *Object) adopt(parent *Object, f *Feature) {
	if o.container != nil && (o.container != parent || o.containerFeature != f) {
		o.container.basicRemove(o.containerFeature, o)
	}
	if r := o.directResource; r != nil && !f.resolveProxies {
		r.contents.basicRemove(o)
		o.directResource = nil
	}
	o.container, o.containerFeature = parent, f
}

// basicRemove removes target from f without touching the opposite end.
func (o *Object) basicRemove(f *Feature, target *Object) {
	i := o.slot(f)
	if f.many {
		if l, ok := o.values[i].(*List); ok {
			l.basicRemove(target)
		}
		return
	}
	if o.values[i] == target {
		o.values[i] = nil
	}
}
