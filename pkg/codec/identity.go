package codec

import (
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/model"
)

// Object ids are assigned in encounter order, starting at 0. The writer maps
// objects to ids; the reader keeps the inverse as a slice.
//
// Locations are interned the same way, without their fragment: a location
// reference is [id, location?, fragment], where the location string is
// present only where the id is introduced.

// lookupOrAssign returns the id of o and whether o was seen before.
func (e *encoder) lookupOrAssign(o *model.Object) (int, bool) {
	if id, ok := e.ids[o]; ok {
		return id, true
	}
	id := len(e.ids)
	e.ids[o] = id
	e.stats.Objects++
	return id, false
}

// uriRef writes a location reference for an absolute URI that may carry a
// fragment. An empty URI is written as null.
func (e *encoder) uriRef(uri string) any {
	base, fragment, ok := location.SplitFragment(uri)
	var frag any
	if ok {
		frag = fragment
	}
	return e.locationRef(base, frag)
}

// locationRef writes a location reference for a URI without fragment. frag is
// a string or nil.
func (e *encoder) locationRef(uri string, frag any) any {
	if uri == "" {
		return nil
	}
	if id, ok := e.uris[uri]; ok {
		return []any{id, frag}
	}
	id := len(e.uris)
	e.uris[uri] = id
	e.stats.URIs++
	return []any{id, location.Deresolve(uri, e.base), frag}
}

// objectAt returns the object with the given id.
func (d *decoder) objectAt(id int64) (*model.Object, error) {
	if id < 0 || id >= int64(len(d.objects)) {
		return nil, errors.New(errors.ErrCodeUnknownReference, "object id %d was never defined (%d known)", id, len(d.objects))
	}
	return d.objects[id], nil
}

// uri reads a location reference and returns the absolute URI, or "" for
// null.
func (d *decoder) uri(c *cursor) (string, error) {
	v, ok := c.next()
	if !ok {
		return "", formatError("missing location reference")
	}
	if v == nil {
		return "", nil
	}
	arr, isArr := jsonval.Array(v)
	if !isArr {
		return "", formatError("location reference must be an array or null, got %s", jsonval.Describe(v))
	}
	uc := cursor{items: arr}
	id, err := d.index(&uc, "location id")
	if err != nil {
		return "", err
	}

	var uri string
	switch {
	case id == len(d.uris):
		sv, _ := uc.next()
		s, ok := jsonval.String(sv)
		if !ok {
			return "", formatError("location %d is introduced without its string", id)
		}
		uri = location.Resolve(s, d.base)
		d.uris = append(d.uris, uri)
		d.stats.URIs++
	case id >= 0 && id < len(d.uris):
		uri = d.uris[id]
	default:
		return "", errors.New(errors.ErrCodeUnknownReference, "location id %d was never defined", id)
	}

	fv, _ := uc.next()
	if frag, ok := jsonval.String(fv); ok {
		uri += "#" + frag
	}
	return uri, nil
}
