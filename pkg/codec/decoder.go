package codec

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/model"
)

// cursor reads the elements of a JSON array in order.
type cursor struct {
	items []any
	pos   int
}

func (c *cursor) more() bool { return c.pos < len(c.items) }

func (c *cursor) next() (any, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	v := c.items[c.pos]
	c.pos++
	return v, true
}

func formatError(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidFormat, format, args...)
}

// decoder holds the state of one Decode call.
type decoder struct {
	style    Style
	base     string
	registry *model.Registry
	logger   *log.Logger
	scratch  *scratch

	packages []*decPackage
	objects  []*model.Object
	uris     []string

	stats Stats
}

// index reads a structural integer.
func (d *decoder) index(c *cursor, what string) (int, error) {
	v, ok := c.next()
	if !ok {
		return 0, formatError("missing %s", what)
	}
	n, ok := jsonval.Int(v)
	if !ok || jsonval.KindOf(v) != jsonval.KindNumber {
		return 0, formatError("%s must be a number, got %s", what, jsonval.Describe(v))
	}
	return int(n), nil
}

// object reads a node, a back-reference id or -1.
func (d *decoder) object(c *cursor) (*model.Object, error) {
	v, ok := c.next()
	if !ok {
		return nil, formatError("missing object")
	}
	if arr, isArr := jsonval.Array(v); isArr {
		return d.node(arr)
	}
	id, ok := jsonval.Int(v)
	if !ok {
		return nil, formatError("expected object or object id, got %s", jsonval.Describe(v))
	}
	if id == -1 {
		return nil, nil
	}
	return d.objectAt(id)
}

// node reads [id, classRef, (featureID, [name?, value])*]. A feature id of -1
// is followed by the location of the object the node stands in for.
func (d *decoder) node(arr []any) (*model.Object, error) {
	c := cursor{items: arr}
	id, err := d.index(&c, "object id")
	if err != nil {
		return nil, err
	}
	if id != len(d.objects) {
		return nil, formatError("object id %d out of sequence, want %d", id, len(d.objects))
	}
	cd, err := d.class(&c)
	if err != nil {
		return nil, err
	}
	if cd.class.Abstract() {
		return nil, errors.New(errors.ErrCodeSchemaMismatch, "class %q is abstract", cd.class.Name())
	}
	obj := cd.class.New()
	d.objects = append(d.objects, obj)
	d.stats.Objects++

	for c.more() {
		fid, err := d.index(&c, "feature id")
		if err != nil {
			return nil, err
		}
		if fid == -1 {
			uri, err := d.uri(&c)
			if err != nil {
				return nil, err
			}
			obj.SetProxyURI(uri)
			d.stats.Proxies++
			if !d.style.Has(StyleProxyAttributes) {
				break
			}
			continue
		}

		fv, _ := c.next()
		farr, ok := jsonval.Array(fv)
		if !ok {
			return nil, formatError("feature %d of %s: expected array, got %s", fid, cd.class.Name(), jsonval.Describe(fv))
		}
		fc := cursor{items: farr}
		fd, err := d.feature(cd, fid, &fc)
		if err != nil {
			return nil, err
		}
		if err := d.featureValue(obj, fd, &fc); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (d *decoder) featureValue(obj *model.Object, fd *decFeature, c *cursor) error {
	f := fd.feature
	switch fd.kind {
	case KindContainer, KindContainerProxy, KindObject, KindObjectProxy, KindContainment, KindContainmentProxy:
		target, err := d.target(f, c)
		if err != nil {
			return err
		}
		obj.Set(f, objectValue(target))
		return nil
	case KindObjectList, KindObjectListProxy, KindContainmentList, KindContainmentListProxy:
		return d.objectList(obj.List(f), fd, c)
	case KindFeatureMap:
		return d.featureMap(obj.FeatureMap(f), fd, c)
	case KindDataList:
		return d.dataList(obj.List(f), fd, c)
	}
	obj.Set(f, d.scalar(fd, c, false))
	return nil
}

// objectValue keeps a nil object from becoming a non-nil interface.
func objectValue(o *model.Object) any {
	if o == nil {
		return nil
	}
	return o
}

func sameValue(a, b any) bool { return a == b }

// target reads an object for reference f and checks that its class conforms
// to the reference type.
func (d *decoder) target(f *model.Feature, c *cursor) (*model.Object, error) {
	o, err := d.object(c)
	if err != nil || o == nil {
		return o, err
	}
	if want := f.ReferenceType(); !want.IsSuperTypeOf(o.Class()) {
		return nil, errors.New(errors.ErrCodeSchemaMismatch,
			"feature %s: %s is not a %s", f, o.Class().Name(), want.Name())
	}
	return o, nil
}

// objectList reads an array of objects and reconciles l with it. Nulls are
// skipped.
func (d *decoder) objectList(l *model.List, fd *decFeature, c *cursor) error {
	v, _ := c.next()
	arr, ok := jsonval.Array(v)
	if !ok {
		return formatError("feature %s: expected array, got %s", fd.feature, jsonval.Describe(v))
	}
	vals := d.scratch.values.get(len(arr))
	defer d.scratch.values.put(vals)

	ac := cursor{items: arr}
	k := 0
	for ac.more() {
		o, err := d.target(fd.feature, &ac)
		if err != nil {
			return err
		}
		if o != nil {
			vals[k] = o
			k++
		}
	}

	e := l.Len()
	existing := d.scratch.values.get(e)
	indices := d.scratch.indices.get(e)
	consumed := d.scratch.consumed.get(e)
	defer func() {
		d.scratch.consumed.put(consumed)
		d.scratch.indices.put(indices)
		d.scratch.values.put(existing)
	}()
	if err := reconcile[any](l, vals[:k], sameValue, existing, indices, consumed); err != nil {
		return errors.Wrap(errors.ErrCodeReconcileViolation, err, "feature %s", fd.feature)
	}
	return nil
}

// featureMap reads an array of entries and reconciles m with it.
func (d *decoder) featureMap(m *model.FeatureMap, fd *decFeature, c *cursor) error {
	v, _ := c.next()
	arr, ok := jsonval.Array(v)
	if !ok {
		return formatError("feature %s: expected array, got %s", fd.feature, jsonval.Describe(v))
	}
	entries := d.scratch.entries.get(len(arr))
	defer d.scratch.entries.put(entries)

	ac := cursor{items: arr}
	k := 0
	for ac.more() {
		entry, err := d.entry(&ac)
		if err != nil {
			return err
		}
		entries[k] = entry
		k++
	}

	e := m.Len()
	existing := d.scratch.entries.get(e)
	indices := d.scratch.indices.get(e)
	consumed := d.scratch.consumed.get(e)
	defer func() {
		d.scratch.consumed.put(consumed)
		d.scratch.indices.put(indices)
		d.scratch.entries.put(existing)
	}()
	if err := reconcile(m, entries[:k], model.Entry.Equal, existing, indices, consumed); err != nil {
		return errors.Wrap(errors.ErrCodeReconcileViolation, err, "feature %s", fd.feature)
	}
	return nil
}

// entry reads [[classRef, featureID, name?], value].
func (d *decoder) entry(c *cursor) (model.Entry, error) {
	v, _ := c.next()
	arr, ok := jsonval.Array(v)
	if !ok {
		return model.Entry{}, formatError("feature map entry must be an array, got %s", jsonval.Describe(v))
	}
	ec := cursor{items: arr}
	hv, _ := ec.next()
	head, ok := jsonval.Array(hv)
	if !ok {
		return model.Entry{}, formatError("feature map entry head must be an array, got %s", jsonval.Describe(hv))
	}
	hc := cursor{items: head}
	cd, err := d.class(&hc)
	if err != nil {
		return model.Entry{}, err
	}
	fid, err := d.index(&hc, "entry feature id")
	if err != nil {
		return model.Entry{}, err
	}
	fd, err := d.feature(cd, fid, &hc)
	if err != nil {
		return model.Entry{}, err
	}

	if fd.kind.IsReference() {
		o, err := d.target(fd.feature, &ec)
		if err != nil {
			return model.Entry{}, err
		}
		return model.Entry{Feature: fd.feature, Value: objectValue(o)}, nil
	}
	return model.Entry{Feature: fd.feature, Value: d.scalar(fd, &ec, true)}, nil
}
