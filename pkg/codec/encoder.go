package codec

import (
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/model"
)

// encoder holds the state of one Encode call.
type encoder struct {
	style   Style
	base    string
	current *model.Resource
	scratch *scratch

	packages map[*model.Package]*encPackage
	classes  map[*model.Class]*encClass
	ids      map[*model.Object]int
	uris     map[string]int

	stats Stats
}

func newEncoder(res *model.Resource, style Style, base string, s *scratch) *encoder {
	return &encoder{
		style:    style,
		base:     base,
		current:  res,
		scratch:  s,
		packages: make(map[*model.Package]*encPackage),
		classes:  make(map[*model.Class]*encClass),
		ids:      make(map[*model.Object]int),
		uris:     make(map[string]int),
	}
}

// document writes the header and the roots of the current resource.
func (e *encoder) document(version Version) jsonval.Ordered {
	doc := jsonval.Ordered{{Key: "emf", Value: version.String()}}
	if version.HasStyle() {
		doc = append(doc, jsonval.Member{Key: "style", Value: int(e.style)})
	}
	return append(doc, jsonval.Member{Key: "resource", Value: e.objects(e.current.Contents(), checkContainer)})
}

// objects writes the elements of a reference list.
func (e *encoder) objects(l *model.List, mode checkMode) []any {
	buf := e.scratch.values.get(l.Len())
	defer e.scratch.values.put(buf)
	n := l.CopyTo(buf)
	out := make([]any, n)
	for i, v := range buf[:n] {
		o, _ := v.(*model.Object)
		out[i] = e.object(o, mode)
	}
	return out
}

// object writes o: -1 for nil, its id when it was written before, and the
// full node otherwise. mode decides whether o is written as a proxy.
func (e *encoder) object(o *model.Object, mode checkMode) any {
	if o == nil {
		return -1
	}
	id, seen := e.lookupOrAssign(o)
	if seen {
		return id
	}

	cd, classRef := e.class(o.Class())
	node := []any{id, classRef}

	var proxy bool
	switch mode {
	case checkDirectResource:
		r := o.DirectResource()
		proxy = r != nil && r != e.current || o.IsProxy()
	case checkResource:
		r := o.Resource()
		proxy = r != nil && r != e.current || o.IsProxy()
	}

	if proxy {
		e.stats.Proxies++
		node = append(node, -1, e.uriRef(o.URI()))
		if !e.style.Has(StyleProxyAttributes) {
			return node
		}
	}
	return e.features(node, o, cd, mode, proxy)
}

// features appends (featureID, [name?, value]) pairs for every feature of o
// that is written.
func (e *encoder) features(node []any, o *model.Object, cd *encClass, mode checkMode, proxy bool) []any {
	for i := range cd.features {
		fd := &cd.features[i]
		switch {
		case fd.transient,
			fd.kind == KindContainerProxy && mode != checkContainer,
			proxy && fd.proxyTransient,
			!o.IsSet(fd.feature):
			continue
		}
		node = append(node, i, e.featureValue(o, fd))
	}
	return node
}

func (e *encoder) featureValue(o *model.Object, fd *encFeature) []any {
	out := make([]any, 0, 2)
	if !fd.named {
		fd.named = true
		e.stats.Features++
		out = append(out, fd.feature.Name())
	}
	return append(out, e.value(o.Get(fd.feature), fd))
}

func (e *encoder) value(v any, fd *encFeature) any {
	switch fd.kind {
	case KindContainer, KindContainerProxy, KindObject, KindObjectProxy, KindContainment, KindContainmentProxy:
		o, _ := v.(*model.Object)
		return e.object(o, fd.kind.check())
	case KindObjectList, KindObjectListProxy, KindContainmentList, KindContainmentListProxy:
		return e.objects(v.(*model.List), fd.kind.check())
	case KindFeatureMap:
		return e.featureMap(v.(*model.FeatureMap))
	case KindDataList:
		return e.dataList(v.(*model.List), fd.feature)
	}
	return e.scalar(v, fd.feature, fd.kind, false)
}

// featureMap writes each entry as [[classRef, featureID, name?], value].
func (e *encoder) featureMap(m *model.FeatureMap) []any {
	buf := e.scratch.entries.get(m.Len())
	defer e.scratch.entries.put(buf)
	n := m.CopyTo(buf)
	out := make([]any, n)
	for i, entry := range buf[:n] {
		out[i] = e.entry(entry)
	}
	return out
}

func (e *encoder) entry(entry model.Entry) []any {
	f := entry.Feature
	cls := f.Class()
	cd, classRef := e.class(cls)
	id := cls.FeatureID(f)
	fd := &cd.features[id]

	head := []any{classRef, id}
	if !fd.named {
		fd.named = true
		e.stats.Features++
		head = append(head, f.Name())
	}

	var v any
	if fd.kind.IsReference() {
		o, _ := entry.Value.(*model.Object)
		v = e.object(o, fd.kind.check())
	} else {
		v = e.scalar(entry.Value, f, fd.kind, true)
	}
	return []any{head, v}
}

// baseFor returns the base URI used to deresolve locations written into a
// document for res.
func baseFor(res *model.Resource, override string) string {
	if override != "" {
		return override
	}
	if uri := res.URI(); location.IsBase(uri) {
		return uri
	}
	return ""
}
