package model

import (
	"fmt"
	"slices"
)

// List is the ordered value of a multi-valued feature, or the contents of a
// [Resource].
//
// Reference lists and resource contents are unique: an object appears at most
// once. Adding to or removing from a reference list updates the opposite end
// and containment of the affected objects.
type List struct {
	owner    *Object
	feature  *Feature
	resource *Resource
	unique   bool
	items    []any
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at index i.
func (l *List) At(i int) any { return l.items[i] }

// Values returns a copy of the elements.
func (l *List) Values() []any { return slices.Clone(l.items) }

// Objects returns the elements that are objects, in order.
func (l *List) Objects() []*Object {
	out := make([]*Object, 0, len(l.items))
	for _, v := range l.items {
		if o, ok := v.(*Object); ok {
			out = append(out, o)
		}
	}
	return out
}

// CopyTo copies the elements into dst and returns the number copied.
func (l *List) CopyTo(dst []any) int { return copy(dst, l.items) }

// IndexOf returns the index of v, or -1.
func (l *List) IndexOf(v any) int {
	if o, ok := v.(*Object); ok {
		for i, x := range l.items {
			if x == any(o) {
				return i
			}
		}
		return -1
	}
	return slices.IndexFunc(l.items, func(x any) bool { return ValuesEqual(x, v) })
}

// Contains reports whether v is an element.
func (l *List) Contains(v any) bool { return l.IndexOf(v) >= 0 }

// Add appends v. On a unique list it reports false and does nothing if v is
// already present.
func (l *List) Add(v any) bool {
	if l.unique && l.Contains(v) {
		return false
	}
	l.InsertUnique(len(l.items), v)
	return true
}

// InsertUnique inserts vs at index without checking for duplicates. The caller
// guarantees that none of vs is already present in a unique list.
func (l *List) InsertUnique(index int, vs ...any) {
	if index < 0 || index > len(l.items) {
		panic(fmt.Sprintf("model: insert index %d out of range [0, %d]", index, len(l.items)))
	}
	l.items = slices.Insert(l.items, index, vs...)
	for _, v := range vs {
		l.didAdd(v)
	}
}

// Move moves the element at index from to index to, shifting the elements in
// between.
func (l *List) Move(to, from int) {
	n := len(l.items)
	if to < 0 || to >= n || from < 0 || from >= n {
		panic(fmt.Sprintf("model: move %d -> %d out of range [0, %d)", from, to, n))
	}
	if to == from {
		return
	}
	v := l.items[from]
	if from < to {
		copy(l.items[from:to], l.items[from+1:to+1])
	} else {
		copy(l.items[to+1:from+1], l.items[to:from])
	}
	l.items[to] = v
}

// Remove removes v and reports whether it was present.
func (l *List) Remove(v any) bool {
	i := l.IndexOf(v)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

// RemoveAt removes and returns the element at index i.
func (l *List) RemoveAt(i int) any {
	v := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	l.didRemove(v)
	return v
}

// Clear removes every element.
func (l *List) Clear() {
	for len(l.items) > 0 {
		l.RemoveAt(len(l.items) - 1)
	}
}

func (l *List) didAdd(v any) {
	o, ok := v.(*Object)
	if !ok {
		return
	}
	switch {
	case l.resource != nil:
		l.resource.attach(o)
	case l.owner != nil && l.feature.reference:
		l.owner.inverseAdd(l.feature, o)
	}
}

func (l *List) didRemove(v any) {
	o, ok := v.(*Object)
	if !ok {
		return
	}
	switch {
	case l.resource != nil:
		if o.directResource == l.resource {
			o.directResource = nil
		}
	case l.owner != nil && l.feature.reference:
		l.owner.inverseRemove(l.feature, o)
	}
}

func (l *List) basicAdd(v any) { l.items = append(l.items, v) }

func (l *List) basicRemove(v any) {
	if i := l.IndexOf(v); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
}

// =============================================================================
// Feature maps
// =============================================================================

// Entry is one element of a [FeatureMap]: a value tagged with the feature it
// belongs to.
type Entry struct {
	Feature *Feature
	Value   any
}

// Equal reports whether e and other have the same feature and equal values.
func (e Entry) Equal(other Entry) bool {
	return e.Feature == other.Feature && ValuesEqual(e.Value, other.Value)
}

// FeatureMap is an ordered list of heterogeneous entries. Entries are compared
// by value, not identity.
type FeatureMap struct {
	owner   *Object
	feature *Feature
	items   []Entry
}

// Len returns the number of entries.
func (m *FeatureMap) Len() int { return len(m.items) }

// At returns the entry at index i.
func (m *FeatureMap) At(i int) Entry { return m.items[i] }

// Entries returns a copy of the entries.
func (m *FeatureMap) Entries() []Entry { return slices.Clone(m.items) }

// CopyTo copies the entries into dst and returns the number copied.
func (m *FeatureMap) CopyTo(dst []Entry) int { return copy(dst, m.items) }

// Add appends an entry.
func (m *FeatureMap) Add(f *Feature, v any) {
	m.InsertUnique(len(m.items), Entry{Feature: f, Value: v})
}

// InsertUnique inserts entries at index.
func (m *FeatureMap) InsertUnique(index int, entries ...Entry) {
	if index < 0 || index > len(m.items) {
		panic(fmt.Sprintf("model: insert index %d out of range [0, %d]", index, len(m.items)))
	}
	m.items = slices.Insert(m.items, index, entries...)
}

// Move moves the entry at index from to index to.
func (m *FeatureMap) Move(to, from int) {
	n := len(m.items)
	if to < 0 || to >= n || from < 0 || from >= n {
		panic(fmt.Sprintf("model: move %d -> %d out of range [0, %d)", from, to, n))
	}
	e := m.items[from]
	m.items = slices.Delete(m.items, from, from+1)
	m.items = slices.Insert(m.items, to, e)
}

// Values returns the values of the entries for feature f, in order.
func (m *FeatureMap) Values(f *Feature) []any {
	var out []any
	for _, e := range m.items {
		if e.Feature == f {
			out = append(out, e.Value)
		}
	}
	return out
}
