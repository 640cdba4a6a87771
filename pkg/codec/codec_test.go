package codec

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/model"
)

const treeNS = "http://example.com/tree"

type tree struct {
	pkg      *model.Package
	node     *model.Class
	shape    *model.Class
	label    *model.Class
	color    *model.Enum
	name     *model.Feature
	children *model.Feature
	parent   *model.Feature
	friends  *model.Feature
	best     *model.Feature
	link     *model.Feature
	colorF   *model.Feature
	size     *model.Feature
	born     *model.Feature
	initial  *model.Feature
	tags     *model.Feature
	mixed    *model.Feature
	cache    *model.Feature
}

func newTree(t *testing.T) *tree {
	t.Helper()
	p := model.NewPackage("tree", treeNS)
	node := p.NewClass("Node")
	color := p.NewEnum("Color",
		model.EnumLiteral{Name: "red", Value: 0},
		model.EnumLiteral{Name: "green", Value: 1, Literal: "GREEN"},
	)
	shape := p.NewClass("Shape").SetAbstract(true)

	tr := &tree{pkg: p, node: node, shape: shape, label: p.NewClass("Label"), color: color}
	tr.name = node.AddAttribute("name", model.String, model.FeatureOptions{})
	tr.children = node.AddReference("children", node, model.FeatureOptions{Many: true, Containment: true})
	tr.parent = node.AddReference("parent", node, model.FeatureOptions{})
	if err := model.SetOpposites(tr.children, tr.parent); err != nil {
		t.Fatalf("SetOpposites: %v", err)
	}
	tr.friends = node.AddReference("friends", node, model.FeatureOptions{Many: true})
	if err := model.SetOpposites(tr.friends, tr.friends); err != nil {
		t.Fatalf("SetOpposites: %v", err)
	}
	tr.best = node.AddReference("best", node, model.FeatureOptions{})
	tr.link = node.AddReference("link", node, model.FeatureOptions{ResolveProxies: true})
	tr.colorF = node.AddAttribute("color", color, model.FeatureOptions{})
	tr.size = node.AddAttribute("size", model.Int, model.FeatureOptions{})
	tr.born = node.AddAttribute("born", model.Date, model.FeatureOptions{})
	tr.initial = node.AddAttribute("initial", model.Char, model.FeatureOptions{})
	tr.tags = node.AddAttribute("tags", model.String, model.FeatureOptions{Many: true})
	tr.mixed = node.AddAttribute("mixed", model.FeatureMapEntry, model.FeatureOptions{})
	tr.cache = node.AddAttribute("cache", model.String, model.FeatureOptions{Transient: true})
	return tr
}

func (tr *tree) newNode(name string) *model.Object {
	o := tr.node.New()
	o.Set(tr.name, name)
	return o
}

func (tr *tree) codec(t *testing.T, opts Options) *Codec {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = model.NewRegistry(tr.pkg)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustMarshal(t *testing.T, c *Codec, res *model.Resource) string {
	t.Helper()
	data, _, err := c.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(data)
}

func mustUnmarshal(t *testing.T, c *Codec, data, uri string) *model.Resource {
	t.Helper()
	res := model.NewResource(uri)
	if _, err := c.Unmarshal([]byte(data), res); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, data)
	}
	return res
}

func TestMarshalLayout(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	a := tr.newNode("a")
	root.List(tr.children).Add(a)
	root.Set(tr.best, a)
	root.Set(tr.cache, "scratch")

	res := model.NewResource("")
	res.Contents().Add(root)

	got := mustMarshal(t, tr.codec(t, Options{}), res)
	want := `{"emf":"VERSION_1_1","style":0,"resource":[` +
		`[0,[[0,"http://example.com/tree",[0,"http://example.com/tree","/"]],0,"Node"],` +
		`0,["name","root"],` +
		`1,["children",[[1,[0,0],0,["a"]]]],` +
		`4,["best",1]]]}`
	if got != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", got, want)
	}
}

func TestSchemaWrittenOnce(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	for i := range 5 {
		root.List(tr.children).Add(tr.newNode(fmt.Sprintf("c%d", i)))
	}
	res := model.NewResource("")
	res.Contents().Add(root)

	c := tr.codec(t, Options{})
	got := mustMarshal(t, c, res)
	for _, s := range []string{`"Node"`, `"name"`, `"children"`} {
		if n := strings.Count(got, s); n != 1 {
			t.Errorf("%s written %d times, want 1", s, n)
		}
	}
	// The namespace appears once as nsURI and once as package location.
	if n := strings.Count(got, `"`+treeNS+`"`); n != 2 {
		t.Errorf("namespace written %d times, want 2", n)
	}

	_, stats, err := c.Encode(res)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if stats.Objects != 6 || stats.Classes != 1 || stats.Packages != 1 || stats.Features != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRoundTrip(t *testing.T) {
	tr := newTree(t)
	born := time.UnixMilli(1700000000123).UTC()
	green := tr.color.ByName("green")

	root := tr.newNode("root")
	a, b := tr.newNode("a"), tr.newNode("b")
	root.List(tr.children).Add(a)
	root.List(tr.children).Add(b)
	a.List(tr.children).Add(tr.newNode("a1"))
	root.Set(tr.best, b)
	root.Set(tr.colorF, green)
	root.Set(tr.size, int32(42))
	root.Set(tr.born, born)
	root.Set(tr.initial, 'Z')
	root.List(tr.tags).Add("x")
	root.List(tr.tags).Add("y")
	root.FeatureMap(tr.mixed).Add(tr.name, "n1")
	root.FeatureMap(tr.mixed).Add(tr.best, a)
	second := tr.newNode("second")

	res := model.NewResource("")
	res.Contents().Add(root)
	res.Contents().Add(second)

	for _, style := range []Style{0, StyleBinaryEnumerator, StyleProxyAttributes | StyleBinaryDate} {
		t.Run(style.String(), func(t *testing.T) {
			c := tr.codec(t, Options{Style: style})
			out := mustUnmarshal(t, c, mustMarshal(t, c, res), "")

			roots := out.Roots()
			if len(roots) != 2 {
				t.Fatalf("got %d roots, want 2", len(roots))
			}
			r := roots[0]
			if got := r.Get(tr.name); got != "root" {
				t.Errorf("name = %v", got)
			}
			if got := roots[1].Get(tr.name); got != "second" {
				t.Errorf("second root name = %v", got)
			}
			kids := r.List(tr.children).Objects()
			if len(kids) != 2 || kids[0].Get(tr.name) != "a" || kids[1].Get(tr.name) != "b" {
				t.Fatalf("children = %v", kids)
			}
			if kids[0].Container() != r || kids[0].ContainingFeature() != tr.children {
				t.Error("child container not restored")
			}
			if got := kids[0].List(tr.children).Len(); got != 1 {
				t.Errorf("grandchildren = %d, want 1", got)
			}
			if r.Get(tr.best) != kids[1] {
				t.Error("best does not point at the decoded child")
			}
			if r.Get(tr.colorF) != green {
				t.Errorf("color = %v", r.Get(tr.colorF))
			}
			if r.Get(tr.size) != int32(42) {
				t.Errorf("size = %v", r.Get(tr.size))
			}
			if !model.ValuesEqual(r.Get(tr.born), born) {
				t.Errorf("born = %v, want %v", r.Get(tr.born), born)
			}
			if r.Get(tr.initial) != 'Z' {
				t.Errorf("initial = %v", r.Get(tr.initial))
			}
			if got := r.List(tr.tags).Values(); !slices.Equal(got, []any{"x", "y"}) {
				t.Errorf("tags = %v", got)
			}
			entries := r.FeatureMap(tr.mixed).Entries()
			want := []model.Entry{{Feature: tr.name, Value: "n1"}, {Feature: tr.best, Value: kids[0]}}
			if !slices.EqualFunc(entries, want, model.Entry.Equal) {
				t.Errorf("mixed = %v, want %v", entries, want)
			}
		})
	}
}

func TestNullsAndBackReferences(t *testing.T) {
	tr := newTree(t)
	c := tr.codec(t, Options{})
	doc := `{"emf":"VERSION_1_1","style":0,"resource":[-1,` +
		`[0,[[0,"http://example.com/tree",null],0,"Node"],0,["name","r"],4,["best",-1],` +
		`1,["children",[[1,[0,0],0,["c"],4,[0]]]]],0]}`
	res := mustUnmarshal(t, c, doc, "")

	roots := res.Roots()
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	r := roots[0]
	if r.Get(tr.best) != nil {
		t.Errorf("best = %v, want nil", r.Get(tr.best))
	}
	child := r.List(tr.children).At(0).(*model.Object)
	if child.Get(tr.best) != r {
		t.Error("back-reference not resolved to the root")
	}
}

func TestBidirectionalListOrder(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	a, b, z := tr.newNode("a"), tr.newNode("b"), tr.newNode("z")
	for _, o := range []*model.Object{a, b, z} {
		root.List(tr.children).Add(o)
	}
	friends := root.List(tr.friends)
	friends.Add(z)
	friends.Add(b)
	friends.Add(a)

	res := model.NewResource("")
	res.Contents().Add(root)

	c := tr.codec(t, Options{})
	out := mustUnmarshal(t, c, mustMarshal(t, c, res), "")
	r := out.Roots()[0]

	var names []any
	for _, o := range r.List(tr.friends).Objects() {
		names = append(names, o.Get(tr.name))
	}
	if !slices.Equal(names, []any{"z", "b", "a"}) {
		t.Errorf("friends = %v, want [z b a]", names)
	}
	for _, o := range r.List(tr.children).Objects() {
		if fs := o.List(tr.friends).Objects(); len(fs) != 1 || fs[0] != r {
			t.Errorf("%v friends = %v, want [root]", o.Get(tr.name), fs)
		}
	}
}

func crossDocuments(t *testing.T, tr *tree) (*model.Resource, *model.Object) {
	t.Helper()
	rs := model.NewResourceSet(model.NewRegistry(tr.pkg))
	a := rs.CreateResource("http://example.com/docs/a.json")
	b := rs.CreateResource("http://example.com/docs/b.json")
	r, r2 := tr.newNode("r"), tr.newNode("r2")
	target := tr.newNode("target")
	a.Contents().Add(r)
	a.Contents().Add(r2)
	b.Contents().Add(target)
	r.Set(tr.link, target)
	r2.Set(tr.link, target)
	return a, target
}

func TestProxies(t *testing.T) {
	tr := newTree(t)
	a, _ := crossDocuments(t, tr)

	t.Run("plain", func(t *testing.T) {
		c := tr.codec(t, Options{})
		got := mustMarshal(t, c, a)
		wantNode := `[1,[0,0],-1,[1,"b.json","/"]]`
		if !strings.Contains(got, wantNode) {
			t.Fatalf("proxy node %s missing from\n%s", wantNode, got)
		}

		out := mustUnmarshal(t, c, got, "http://example.com/docs/a.json")
		roots := out.Roots()
		p, _ := roots[0].Get(tr.link).(*model.Object)
		if p == nil || !p.IsProxy() {
			t.Fatalf("link = %v, want proxy", p)
		}
		if got := p.ProxyURI(); got != "http://example.com/docs/b.json#/" {
			t.Errorf("ProxyURI = %q", got)
		}
		if p.IsSet(tr.name) {
			t.Error("proxy carries attributes without proxy-attributes style")
		}
		if roots[1].Get(tr.link) != p {
			t.Error("second reference to the proxy should be a back-reference")
		}
	})

	t.Run("attributes", func(t *testing.T) {
		c := tr.codec(t, Options{Style: StyleProxyAttributes})
		got := mustMarshal(t, c, a)
		if !strings.Contains(got, `-1,[1,"b.json","/"],0,["target"]]`) {
			t.Fatalf("proxy attributes missing from\n%s", got)
		}
		out := mustUnmarshal(t, c, got, "http://example.com/docs/a.json")
		p := out.Roots()[0].Get(tr.link).(*model.Object)
		if !p.IsProxy() || p.Get(tr.name) != "target" {
			t.Errorf("proxy = %v name %v", p, p.Get(tr.name))
		}
	})

	t.Run("header style wins over reader attributes", func(t *testing.T) {
		got := mustMarshal(t, tr.codec(t, Options{}), a)
		if !strings.Contains(got, `"style":0`) {
			t.Fatalf("style 0 header missing from\n%s", got)
		}
		reader := tr.codec(t, Options{Style: StyleProxyAttributes})
		out := mustUnmarshal(t, reader, got, "http://example.com/docs/a.json")
		p, _ := out.Roots()[0].Get(tr.link).(*model.Object)
		if p == nil || !p.IsProxy() {
			t.Fatalf("link = %v, want proxy", p)
		}
		if p.IsSet(tr.name) {
			t.Errorf("proxy name = %v, want unset", p.Get(tr.name))
		}
	})

	t.Run("non-resolving reference inlines", func(t *testing.T) {
		rs := model.NewResourceSet(model.NewRegistry(tr.pkg))
		x := rs.CreateResource("http://example.com/docs/x.json")
		y := rs.CreateResource("http://example.com/docs/y.json")
		r, target := tr.newNode("r"), tr.newNode("target")
		x.Contents().Add(r)
		y.Contents().Add(target)
		r.Set(tr.best, target)

		got := mustMarshal(t, tr.codec(t, Options{}), x)
		if strings.Contains(got, "y.json") {
			t.Errorf("non-resolving reference written as proxy:\n%s", got)
		}
	})
}

func TestEnumStyle(t *testing.T) {
	tr := newTree(t)
	green := tr.color.ByName("green")
	root := tr.newNode("root")
	root.Set(tr.colorF, green)
	res := model.NewResource("")
	res.Contents().Add(root)

	tests := []struct {
		name    string
		opts    Options
		want    string
		version string
	}{
		{"literal", Options{}, `["color","GREEN"]`, `"emf":"VERSION_1_1","style":0`},
		{"ordinal", Options{Style: StyleBinaryEnumerator}, `["color",1]`, `"emf":"VERSION_1_1","style":8`},
		{"version 1.0 ignores style", Options{Version: Version1_0, Style: StyleBinaryEnumerator}, `["color","GREEN"]`, `{"emf":"VERSION_1_0","resource"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustMarshal(t, tr.codec(t, tt.opts), res)
			if !strings.Contains(got, tt.want) {
				t.Errorf("%s missing from %s", tt.want, got)
			}
			if !strings.Contains(got, tt.version) {
				t.Errorf("%s missing from %s", tt.version, got)
			}

			// The reader is configured with the opposite style; the header wins.
			reader := tr.codec(t, Options{Style: tt.opts.Style ^ StyleBinaryEnumerator})
			out := mustUnmarshal(t, reader, got, "")
			if v := out.Roots()[0].Get(tr.colorF); v != green {
				t.Errorf("color = %v, want green", v)
			}
		})
	}
}

func TestFeaturesResolvedByName(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	root.Set(tr.colorF, tr.color.ByName("green"))
	root.Set(tr.size, int32(7))
	res := model.NewResource("")
	res.Contents().Add(root)
	data := mustMarshal(t, tr.codec(t, Options{Style: StyleBinaryEnumerator}), res)

	// Same namespace, features declared in a different order plus one more.
	p := model.NewPackage("tree", treeNS)
	node := p.NewClass("Node")
	color := p.NewEnum("Color",
		model.EnumLiteral{Name: "red", Value: 0},
		model.EnumLiteral{Name: "green", Value: 1, Literal: "GREEN"},
	)
	extra := node.AddAttribute("extra", model.Long, model.FeatureOptions{})
	colorF := node.AddAttribute("color", color, model.FeatureOptions{})
	size := node.AddAttribute("size", model.Int, model.FeatureOptions{})
	name := node.AddAttribute("name", model.String, model.FeatureOptions{})

	c, err := New(Options{Registry: model.NewRegistry(p)})
	if err != nil {
		t.Fatal(err)
	}
	out := mustUnmarshal(t, c, data, "")
	r := out.Roots()[0]
	if r.Get(name) != "root" || r.Get(size) != int32(7) || r.Get(colorF) != color.ByName("green") {
		t.Errorf("decoded name=%v size=%v color=%v", r.Get(name), r.Get(size), r.Get(colorF))
	}
	if r.IsSet(extra) {
		t.Error("extra should be unset")
	}
}

func TestDecodeErrors(t *testing.T) {
	const pkgRef = `[0,"http://example.com/tree",null]`
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed json", `{`, errors.ErrCodeInvalidFormat},
		{"not an object", `[]`, errors.ErrCodeInvalidFormat},
		{"missing tag", `{"resource":[]}`, errors.ErrCodeInvalidFormat},
		{"unknown version", `{"emf":"VERSION_9","resource":[]}`, errors.ErrCodeInvalidFormat},
		{"missing style", `{"emf":"VERSION_1_1","resource":[]}`, errors.ErrCodeInvalidFormat},
		{"resource not array", `{"emf":"VERSION_1_0","resource":{}}`, errors.ErrCodeInvalidFormat},
		{"class ref not array", `{"emf":"VERSION_1_0","resource":[[0,7]]}`, errors.ErrCodeInvalidFormat},
		{"id out of sequence", `{"emf":"VERSION_1_0","resource":[[3,[` + pkgRef + `,0,"Node"]]]}`, errors.ErrCodeInvalidFormat},
		{"feature value not array", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],0,"x"]]}`, errors.ErrCodeInvalidFormat},
		{"unknown package", `{"emf":"VERSION_1_0","resource":[[0,[[0,"urn:nope",null],0,"Node"]]]}`, errors.ErrCodeSchemaMismatch},
		{"unknown class", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Leaf"]]]}`, errors.ErrCodeSchemaMismatch},
		{"abstract class", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,2,"Shape"]]]}`, errors.ErrCodeSchemaMismatch},
		{"unknown feature", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],0,["nope","x"]]]}`, errors.ErrCodeSchemaMismatch},
		{"unnamed feature", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],0,[5]]]}`, errors.ErrCodeSchemaMismatch},
		{"wrong class in list", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,1,"Label"]],[1,[0,0,"Node"],3,["friends",[0]]]]}`, errors.ErrCodeSchemaMismatch},
		{"wrong class in reference", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,1,"Label"]],[1,[0,0,"Node"],4,["best",0]]]}`, errors.ErrCodeSchemaMismatch},
		{"wrong class in containment", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],1,["children",[[1,[0,1,"Label"]]]]]]}`, errors.ErrCodeSchemaMismatch},
		{"unknown object", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],4,["best",7]]]}`, errors.ErrCodeUnknownReference},
		{"unknown root", `{"emf":"VERSION_1_0","resource":[3]}`, errors.ErrCodeUnknownReference},
		{"unknown package id", `{"emf":"VERSION_1_0","resource":[[0,[4,0]]]}`, errors.ErrCodeUnknownReference},
		{"unknown location", `{"emf":"VERSION_1_0","resource":[[0,[` + pkgRef + `,0,"Node"],-1,[5,"#/"]]]}`, errors.ErrCodeUnknownReference},
	}
	tr := newTree(t)
	c := tr.codec(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := model.NewResource("")
			_, err := c.Unmarshal([]byte(tt.doc), res)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
			if !errors.IsDecodeFailure(err) {
				t.Errorf("IsDecodeFailure(%v) = false", err)
			}
			if res.Contents().Len() != 0 {
				t.Error("resource modified by failed decode")
			}
		})
	}
}

func TestLenientScalars(t *testing.T) {
	tr := newTree(t)
	c := tr.codec(t, Options{})
	doc := `{"emf":"VERSION_1_1","style":0,"resource":[[0,[[0,"http://example.com/tree",null],0,"Node"],` +
		`0,["name",42],6,["color","PURPLE"],7,["size","big"],9,["initial",""],8,["born",null]]]}`
	res := model.NewResource("")
	stats, err := c.Unmarshal([]byte(doc), res)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	r := res.Roots()[0]
	if r.Get(tr.name) != nil {
		t.Errorf("name = %v, want nil", r.Get(tr.name))
	}
	if r.Get(tr.colorF) != tr.color.ByName("red") {
		t.Errorf("color = %v, want default", r.Get(tr.colorF))
	}
	if r.Get(tr.size) != int32(0) || r.Get(tr.initial) != rune(0) || r.Get(tr.born) != nil {
		t.Errorf("size=%v initial=%v born=%v", r.Get(tr.size), r.Get(tr.initial), r.Get(tr.born))
	}
	if stats.Recovered != 4 {
		t.Errorf("Recovered = %d, want 4", stats.Recovered)
	}
}

func TestBackends(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	root.Set(tr.size, int32(3))
	res := model.NewResource("")
	res.Contents().Add(root)

	writer := tr.codec(t, Options{Backend: jsonval.Segment{}})
	data := mustMarshal(t, writer, res)

	reader := tr.codec(t, Options{Backend: jsonval.Lenient{}})
	out := mustUnmarshal(t, reader, "// exported\n"+data, "")
	if got := out.Roots()[0].Get(tr.size); got != int32(3) {
		t.Errorf("size = %v", got)
	}
}

func TestConcurrentEncode(t *testing.T) {
	tr := newTree(t)
	root := tr.newNode("root")
	for i := range 20 {
		root.List(tr.children).Add(tr.newNode(fmt.Sprintf("c%d", i)))
	}
	res := model.NewResource("")
	res.Contents().Add(root)
	c := tr.codec(t, Options{})
	want := mustMarshal(t, c, res)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _, err := c.Marshal(res)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = string(data)
		}()
	}
	wg.Wait()
	for i, got := range results {
		if got != want {
			t.Errorf("result %d differs", i)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	if _, err := New(Options{Version: 7}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad version: %v", err)
	}
	if _, err := New(Options{Style: 64}); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("bad style: %v", err)
	}
	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if opts := c.Options(); opts.Version != DefaultVersion || opts.Backend == nil || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
}

// =============================================================================
// Reconciliation
// =============================================================================

type recorder struct {
	items []string
	ops   []string
}

func (r *recorder) Len() int { return len(r.items) }

func (r *recorder) CopyTo(dst []string) int { return copy(dst, r.items) }

func (r *recorder) InsertUnique(index int, vs ...string) {
	r.ops = append(r.ops, fmt.Sprintf("insert(%d,%v)", index, vs))
	r.items = slices.Insert(r.items, index, vs...)
}

func (r *recorder) Move(to, from int) {
	r.ops = append(r.ops, fmt.Sprintf("move(%d<-%d)", to, from))
	v := r.items[from]
	r.items = slices.Delete(r.items, from, from+1)
	r.items = slices.Insert(r.items, to, v)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		ops      []string
	}{
		{"empty", nil, []string{"a", "b"}, []string{"insert(0,[a b])"}},
		{"nothing new", []string{"a", "b"}, []string{"a", "b"}, nil},
		{"reversed", []string{"a", "b"}, []string{"b", "a"}, []string{"move(0<-1)"}},
		{"interleaved", []string{"a", "c"}, []string{"a", "b", "c", "d"},
			[]string{"insert(0,[b d])", "move(0<-2)", "move(2<-3)"}},
		{"interleaved out of order", []string{"c", "a"}, []string{"a", "b", "c", "d"},
			[]string{"move(0<-1)", "insert(0,[b d])", "move(0<-2)", "move(2<-3)"}},
		{"appended", []string{"a"}, []string{"a", "b", "c"},
			[]string{"insert(0,[b c])", "move(0<-2)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{items: slices.Clone(tt.existing)}
			want := slices.Clone(tt.incoming)
			if err := Reconcile[string](r, slices.Clone(tt.incoming), func(a, b string) bool { return a == b }); err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if !slices.Equal(r.items, want) {
				t.Errorf("items = %v, want %v", r.items, want)
			}
			if !slices.Equal(r.ops, tt.ops) {
				t.Errorf("ops = %v, want %v", r.ops, tt.ops)
			}
		})
	}
}

func TestReconcileViolation(t *testing.T) {
	r := &recorder{items: []string{"x"}}
	err := Reconcile[string](r, []string{"a"}, func(a, b string) bool { return a == b })
	if !errors.Is(err, errors.ErrCodeReconcileViolation) {
		t.Errorf("err = %v, want RECONCILE_VIOLATION", err)
	}
}
