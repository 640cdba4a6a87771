// Package codec reads and writes object graphs as compact JSON documents.
//
// A document looks like
//
//	{"emf": "VERSION_1_1", "style": 8, "resource": [root, ...]}
//
// where every object is written once, in full, at its first occurrence:
//
//	[id, classRef, featureID, [name?, value], ...]
//
// Later occurrences are the bare id, and null references are -1. Packages,
// classes, feature names and document locations are interned the same way:
// their names appear only the first time they are used, so the schema
// information costs a constant per type rather than per object.
//
// Objects held by another document are written as proxies: the node carries
// -1 in place of a feature id, followed by a reference to the location of the
// real object. Locations are written relative to the document's own URI when
// possible.
//
// # Decoding
//
// Classes and features are resolved by name through a [model.Registry], so a
// reader whose schema has gained features in between can still decode older
// documents. Malformed scalar values fall back to their zero value; any
// structural problem fails the decode with an error carrying one of the codes
// INVALID_FORMAT, SCHEMA_MISMATCH, UNKNOWN_REFERENCE or RECONCILE_VIOLATION.
// The resource is only modified when decoding succeeds.
//
// Lists that the decoder finds partially filled, typically through the
// opposite end of a bidirectional reference, are reconciled with the decoded
// order instead of being appended to. See [Reconcile].
package codec

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/model"
)

// Options configures a [Codec].
type Options struct {
	// Version is the format version written. Defaults to DefaultVersion.
	Version Version
	// Style is the style written into Version1_1 documents. When decoding,
	// the style found in the document header takes precedence.
	Style Style
	// Backend parses and serializes JSON text. Defaults to jsonval.Std.
	Backend jsonval.Backend
	// Registry resolves package namespaces when decoding. Defaults to the
	// registry of the resource set of the decoded resource.
	Registry *model.Registry
	// BaseURI overrides the URI against which locations are made relative
	// and resolved. Defaults to the resource URI.
	BaseURI string
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	switch o.Version {
	case 0:
		o.Version = DefaultVersion
	case Version1_0, Version1_1:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unsupported version %d", o.Version)
	}
	if o.Style < 0 || o.Style > StyleBinaryFloatingPoint|StyleBinaryDate|StyleProxyAttributes|StyleBinaryEnumerator {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style %d", o.Style)
	}
	if o.Backend == nil {
		o.Backend = jsonval.Std{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Stats describes one encode or decode call.
type Stats struct {
	Version   Version
	Style     Style
	Objects   int // objects written or read, proxies included
	Proxies   int
	Packages  int
	Classes   int
	Features  int // feature names written or resolved
	URIs      int
	Recovered int // malformed scalars replaced by their zero value
}

// Codec encodes and decodes resources. It is safe for concurrent use; each
// call keeps its own tables and borrows scratch buffers from a pool.
type Codec struct {
	opts Options
	pool scratchPool
}

// New returns a codec for opts.
func New(opts Options) (*Codec, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Codec{opts: opts}, nil
}

// Options returns the codec's options with defaults applied.
func (c *Codec) Options() Options { return c.opts }

// style returns the style a document of the configured version is written in.
func (c *Codec) style() Style {
	if !c.opts.Version.HasStyle() {
		return StyleBinaryFloatingPoint
	}
	return c.opts.Style
}

// Encode returns the document tree for res. Members of the returned object
// are in header order.
func (c *Codec) Encode(res *model.Resource) (jsonval.Ordered, Stats, error) {
	if res == nil {
		return nil, Stats{}, errors.New(errors.ErrCodeInvalidInput, "nil resource")
	}
	s := c.pool.get()
	defer c.pool.put(s)

	e := newEncoder(res, c.style(), baseFor(res, c.opts.BaseURI), s)
	doc := e.document(c.opts.Version)
	e.stats.Version, e.stats.Style = c.opts.Version, e.style
	return doc, e.stats, nil
}

// Marshal encodes res and serializes it with the configured backend.
func (c *Codec) Marshal(res *model.Resource) ([]byte, Stats, error) {
	doc, stats, err := c.Encode(res)
	if err != nil {
		return nil, stats, err
	}
	data, err := c.opts.Backend.Serialize(doc)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "serialize document")
	}
	return data, stats, nil
}

// Decode reads a parsed document tree and appends its roots to res. On error
// res is left unchanged.
func (c *Codec) Decode(tree any, res *model.Resource) (Stats, error) {
	if res == nil {
		return Stats{}, errors.New(errors.ErrCodeInvalidInput, "nil resource")
	}
	if jsonval.KindOf(tree) != jsonval.KindObject {
		return Stats{}, formatError("document must be a JSON object, got %s", jsonval.Describe(tree))
	}
	tag, _ := jsonval.Field(tree, "emf")
	s, ok := jsonval.String(tag)
	if !ok {
		return Stats{}, formatError("missing \"emf\" version tag")
	}
	version, err := ParseVersion(s)
	if err != nil {
		return Stats{}, err
	}

	style := StyleBinaryFloatingPoint
	if version.HasStyle() {
		sv, _ := jsonval.Field(tree, "style")
		n, ok := jsonval.Int(sv)
		if !ok {
			return Stats{}, formatError("%s document without \"style\"", version)
		}
		style = Style(n)
		if style != c.opts.Style {
			c.opts.Logger.Debug("document style overrides configured style",
				"document", style.String(), "configured", c.opts.Style.String())
		}
	}

	rv, _ := jsonval.Field(tree, "resource")
	roots, ok := jsonval.Array(rv)
	if !ok {
		return Stats{}, formatError("\"resource\" must be an array, got %s", jsonval.Describe(rv))
	}

	registry := c.opts.Registry
	if registry == nil && res.ResourceSet() != nil {
		registry = res.ResourceSet().Registry()
	}

	sc := c.pool.get()
	defer c.pool.put(sc)
	d := &decoder{
		style:    style,
		base:     baseFor(res, c.opts.BaseURI),
		registry: registry,
		logger:   c.opts.Logger,
		scratch:  sc,
	}
	d.stats.Version, d.stats.Style = version, style

	objs := sc.values.get(len(roots))
	defer sc.values.put(objs)
	rc := cursor{items: roots}
	k := 0
	for rc.more() {
		o, err := d.object(&rc)
		if err != nil {
			return d.stats, err
		}
		if o != nil {
			objs[k] = o
			k++
		}
	}
	contents := res.Contents()
	for _, o := range objs[:k] {
		contents.Add(o)
	}
	return d.stats, nil
}

// Unmarshal parses data with the configured backend and decodes it into res.
func (c *Codec) Unmarshal(data []byte, res *model.Resource) (Stats, error) {
	tree, err := c.opts.Backend.Parse(data)
	if err != nil {
		return Stats{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON")
	}
	return c.Decode(tree, res)
}

// Marshal encodes res with a codec for opts.
func Marshal(res *model.Resource, opts Options) ([]byte, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	data, _, err := c.Marshal(res)
	return data, err
}

// Unmarshal decodes data into res with a codec for opts.
func Unmarshal(data []byte, res *model.Resource, opts Options) error {
	c, err := New(opts)
	if err != nil {
		return err
	}
	_, err = c.Unmarshal(data, res)
	return err
}
