package model

import (
	"testing"
	"time"
)

type fixture struct {
	pkg      *Package
	node     *Class
	name     *Feature
	children *Feature
	parent   *Feature
	friends  *Feature
	best     *Feature
	color    *Enum
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	p := NewPackage("tree", "http://example.com/tree")
	node := p.NewClass("Node")
	fx := fixture{pkg: p, node: node}
	fx.color = p.NewEnum("Color",
		EnumLiteral{Name: "red", Value: 0},
		EnumLiteral{Name: "green", Value: 1, Literal: "GREEN"},
	)
	fx.name = node.AddAttribute("name", String, FeatureOptions{})
	fx.children = node.AddReference("children", node, FeatureOptions{Many: true, Containment: true})
	fx.parent = node.AddReference("parent", node, FeatureOptions{})
	if err := SetOpposites(fx.children, fx.parent); err != nil {
		t.Fatalf("SetOpposites: %v", err)
	}
	fx.friends = node.AddReference("friends", node, FeatureOptions{Many: true})
	if err := SetOpposites(fx.friends, fx.friends); err != nil {
		t.Fatalf("SetOpposites: %v", err)
	}
	fx.best = node.AddReference("best", node, FeatureOptions{})
	return fx
}

func TestClassFeatureOrder(t *testing.T) {
	p := NewPackage("p", "urn:p")
	base := p.NewClass("Base")
	base.AddAttribute("id", Int, FeatureOptions{})
	derived := p.NewClass("Derived")
	derived.AddAttribute("label", String, FeatureOptions{})
	derived.AddSuperType(base)

	if got := derived.FeatureCount(); got != 2 {
		t.Fatalf("FeatureCount = %d, want 2", got)
	}
	if got := derived.Feature(0).Name(); got != "id" {
		t.Errorf("Feature(0) = %q, want inherited feature first", got)
	}
	if got := derived.FeatureID(derived.FeatureByName("label")); got != 1 {
		t.Errorf("FeatureID(label) = %d, want 1", got)
	}
	if !base.IsSuperTypeOf(derived) || derived.IsSuperTypeOf(base) {
		t.Error("IsSuperTypeOf wrong")
	}

	// Adding to the supertype shifts the subtype's own ids.
	base.AddAttribute("rev", Long, FeatureOptions{})
	if got := derived.FeatureID(derived.FeatureByName("label")); got != 2 {
		t.Errorf("FeatureID(label) after supertype change = %d, want 2", got)
	}
}

func TestDuplicateClassifierPanics(t *testing.T) {
	p := NewPackage("p", "urn:p")
	p.NewClass("A")
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate classifier")
		}
	}()
	p.NewEnum("A")
}

func TestContainment(t *testing.T) {
	fx := newFixture(t)
	a, b, c := fx.node.New(), fx.node.New(), fx.node.New()

	a.List(fx.children).Add(c)
	if c.Container() != a || c.Get(fx.parent) != a {
		t.Fatal("child should point at its container")
	}

	// Moving c under b removes it from a.
	c.Set(fx.parent, b)
	if a.List(fx.children).Len() != 0 {
		t.Errorf("old container still holds child")
	}
	if b.List(fx.children).IndexOf(c) != 0 {
		t.Errorf("new container does not hold child")
	}
	if !c.IsSet(fx.parent) {
		t.Error("container feature should be set")
	}

	c.Set(fx.parent, nil)
	if c.Container() != nil || b.List(fx.children).Len() != 0 {
		t.Error("clearing the container feature should detach the child")
	}
}

func TestBidirectionalList(t *testing.T) {
	fx := newFixture(t)
	a, b, c := fx.node.New(), fx.node.New(), fx.node.New()

	a.List(fx.friends).Add(b)
	a.List(fx.friends).Add(c)
	if b.List(fx.friends).IndexOf(a) != 0 || c.List(fx.friends).IndexOf(a) != 0 {
		t.Fatal("opposite ends not updated")
	}
	if a.List(fx.friends).Add(b) {
		t.Error("Add of existing element should report false")
	}

	b.List(fx.friends).Remove(a)
	if a.List(fx.friends).Contains(b) {
		t.Error("remove should update the opposite end")
	}
}

func TestListMove(t *testing.T) {
	tests := []struct {
		name     string
		to, from int
		want     string
	}{
		{"Forward", 2, 0, "bcad"},
		{"Backward", 0, 3, "dabc"},
		{"Same", 1, 1, "abcd"},
		{"Adjacent", 1, 0, "bacd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &List{}
			l.InsertUnique(0, "a", "b", "c", "d")
			l.Move(tt.to, tt.from)
			got := ""
			for _, v := range l.Values() {
				got += v.(string)
			}
			if got != tt.want {
				t.Errorf("Move(%d, %d) = %s, want %s", tt.to, tt.from, got, tt.want)
			}
		})
	}
}

func TestIsSet(t *testing.T) {
	fx := newFixture(t)
	count := fx.node.AddAttribute("count", Int, FeatureOptions{})
	hue := fx.node.AddAttribute("hue", fx.color, FeatureOptions{})
	o := fx.node.New()

	if o.IsSet(count) || o.IsSet(fx.name) || o.IsSet(fx.children) {
		t.Fatal("fresh object should have nothing set")
	}
	if got := o.Get(count); got != int32(0) {
		t.Errorf("default int = %#v, want int32(0)", got)
	}
	o.Set(count, int32(0))
	if o.IsSet(count) {
		t.Error("value equal to the default is not set")
	}
	o.Set(count, int32(4))
	if !o.IsSet(count) {
		t.Error("non-default value should be set")
	}
	if o.Get(hue) != fx.color.Literals()[0] {
		t.Error("enum default should be its first literal")
	}
	o.Set(hue, fx.color.ByName("green"))
	if !o.IsSet(hue) {
		t.Error("non-default literal should be set")
	}
}

func TestSingleOpposite(t *testing.T) {
	p := NewPackage("p", "urn:p")
	person := p.NewClass("Person")
	spouse := person.AddReference("spouse", person, FeatureOptions{})
	if err := SetOpposites(spouse, spouse); err != nil {
		t.Fatal(err)
	}
	a, b, c := person.New(), person.New(), person.New()
	a.Set(spouse, b)
	if b.Get(spouse) != a {
		t.Fatal("opposite not set")
	}
	c.Set(spouse, b)
	if a.Get(spouse) != nil {
		t.Error("previous partner should be cleared")
	}
	if b.Get(spouse) != c {
		t.Error("opposite not updated")
	}
}

func TestResourceFragments(t *testing.T) {
	fx := newFixture(t)
	rs := NewResourceSet(NewRegistry(fx.pkg))
	res := rs.CreateResource("file:///tmp/doc.json")

	root := fx.node.New()
	res.Contents().Add(root)
	kid := fx.node.New()
	root.List(fx.children).Add(fx.node.New())
	root.List(fx.children).Add(kid)

	if got := res.Fragment(root); got != "/" {
		t.Errorf("sole root fragment = %q, want /", got)
	}
	if got := res.Fragment(kid); got != "//@children.1" {
		t.Errorf("child fragment = %q", got)
	}
	if res.ObjectAt("//@children.1") != kid {
		t.Error("ObjectAt did not find child")
	}
	if kid.Resource() != res || kid.DirectResource() != nil {
		t.Error("contained object resource wrong")
	}

	second := fx.node.New()
	res.Contents().Add(second)
	if got := res.Fragment(second); got != "/1" {
		t.Errorf("second root fragment = %q, want /1", got)
	}
	if res.ObjectAt("/0") != root || res.ObjectAt("/") != root {
		t.Error("root lookup failed")
	}

	proxy := fx.node.New()
	proxy.SetProxyURI("file:///tmp/doc.json#//@children.1")
	if rs.Resolve(proxy) != kid {
		t.Error("Resolve should find the loaded target")
	}
	if got := len(res.AllObjects()); got != 4 {
		t.Errorf("AllObjects = %d, want 4", got)
	}
}

func TestRootAdoptionDetachesContainer(t *testing.T) {
	fx := newFixture(t)
	res := NewResource("mem:a")
	parent, child := fx.node.New(), fx.node.New()
	parent.List(fx.children).Add(child)
	res.Contents().Add(child)
	if child.Container() != nil || parent.List(fx.children).Len() != 0 {
		t.Error("adding to a resource should detach a non proxy-resolving containment")
	}
}

func TestDataTypeConversion(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		dt   *DataType
		in   any
		want string
	}{
		{Boolean, true, "true"},
		{Int, int32(-7), "-7"},
		{Char, 'x', "x"},
		{Double, 1.5, "1.5"},
		{Float, float32(0.25), "0.25"},
		{Date, when, "2024-03-01T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.dt.Name(), func(t *testing.T) {
			s, ok := tt.dt.ConvertToString(tt.in)
			if !ok || s != tt.want {
				t.Fatalf("ConvertToString(%v) = %q, %v; want %q", tt.in, s, ok, tt.want)
			}
			back, err := tt.dt.CreateFromString(s)
			if err != nil {
				t.Fatalf("CreateFromString(%q): %v", s, err)
			}
			if !ValuesEqual(back, tt.in) {
				t.Errorf("CreateFromString(%q) = %#v, want %#v", s, back, tt.in)
			}
		})
	}
	if _, ok := String.ConvertToString(nil); ok {
		t.Error("nil should have no string form")
	}
}

func TestEnumLookup(t *testing.T) {
	fx := newFixture(t)
	green := fx.color.ByValue(1)
	if green == nil || green.Literal != "GREEN" {
		t.Fatalf("ByValue(1) = %v", green)
	}
	if v, err := fx.color.CreateFromString("GREEN"); err != nil || v != green {
		t.Errorf("CreateFromString(GREEN) = %v, %v", v, err)
	}
	if v, err := fx.color.CreateFromString("green"); err != nil || v != green {
		t.Errorf("CreateFromString by name = %v, %v", v, err)
	}
	if _, err := fx.color.CreateFromString("blue"); err == nil {
		t.Error("unknown literal should fail")
	}
}

func TestFeatureMapMove(t *testing.T) {
	fx := newFixture(t)
	mixed := fx.node.AddAttribute("mixed", FeatureMapEntry, FeatureOptions{})
	o := fx.node.New()
	m := o.FeatureMap(mixed)
	m.Add(fx.name, "a")
	m.Add(fx.name, "b")
	m.Add(fx.best, o)
	m.Move(0, 2)
	if m.At(0).Feature != fx.best || m.At(2).Value != "b" {
		t.Errorf("unexpected order after move: %v", m.Entries())
	}
	if !m.At(1).Equal(Entry{Feature: fx.name, Value: "a"}) {
		t.Error("entries with same feature and value should be equal")
	}
	if !o.IsSet(mixed) {
		t.Error("non-empty feature map should be set")
	}
}

func TestRegistryLookup(t *testing.T) {
	p := NewPackage("p", "http://example.com/p")
	p.SetLocation("file:///models/p.yaml")
	r := NewRegistry(p)
	if r.Package("http://example.com/p") != p {
		t.Error("lookup by nsURI failed")
	}
	if r.PackageAt("file:///models/p.yaml#/") != p {
		t.Error("lookup by location failed")
	}
	if got := p.URI(); got != "file:///models/p.yaml#/" {
		t.Errorf("URI = %q", got)
	}
	var nilReg *Registry
	if nilReg.Package("x") != nil {
		t.Error("nil registry should find nothing")
	}
}
