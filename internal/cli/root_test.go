package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphwire/pkg/document"
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/metamodel"
	"github.com/matzehuels/graphwire/pkg/model"
	"github.com/matzehuels/graphwire/pkg/observability"
)

const librarySchema = `
name: library
ns_uri: http://example.com/library
enums:
  - name: Genre
    literals:
      - {name: fiction, value: 0}
      - {name: science, value: 1}
classes:
  - name: Library
    attributes:
      - {name: name, type: String}
    references:
      - {name: books, type: Book, many: true, containment: true}
  - name: Book
    attributes:
      - {name: title, type: String}
      - {name: genre, type: Genre}
    references:
      - {name: related, type: Book, many: true}
`

// workspace holds a schema, a document using it and a config file naming
// both the schema and a file store.
type workspace struct {
	dir    string
	schema string
	doc    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	w := &workspace{
		dir:    dir,
		schema: filepath.Join(dir, "library.yaml"),
		doc:    filepath.Join(dir, "library.json"),
		config: filepath.Join(dir, "config.toml"),
	}
	writeFile(t, w.schema, librarySchema)
	writeFile(t, w.config, "schemas = [\"library.yaml\"]\n\n[store]\ndir = \"store\"\n")

	p, err := metamodel.Load(w.schema)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	lib, book := p.Class("Library"), p.Class("Book")
	books := lib.FeatureByName("books")
	title := book.FeatureByName("title")
	genre := book.FeatureByName("genre")
	related := book.FeatureByName("related")
	science := genre.DataType().(*model.Enum).ByLiteral("science")

	root := lib.New()
	root.Set(lib.FeatureByName("name"), "City")
	dune, emma := book.New(), book.New()
	dune.Set(title, "Dune")
	dune.Set(genre, science)
	emma.Set(title, "Emma")
	root.List(books).Add(dune)
	root.List(books).Add(emma)
	dune.List(related).Add(emma)

	uri, err := location.FromPath(w.doc)
	if err != nil {
		t.Fatal(err)
	}
	res := model.NewResourceSet(model.NewRegistry(p)).CreateResource(uri)
	res.Contents().Add(root)
	if _, err := document.SaveFile(context.Background(), w.doc, res, document.Options{}); err != nil {
		t.Fatalf("save document: %v", err)
	}
	return w
}

// run executes the command line args with a fresh CLI and returns what the
// command wrote through cobra's output.
func (w *workspace) run(args ...string) (string, error) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", w.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

func TestRootCommandStructure(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := map[string]bool{
		"inspect": false, "validate": false, "convert": false, "render": false,
		"schema": false, "store": false, "completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().Lookup("verbose") == nil || root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing persistent flags")
	}
}

func TestInspectAndValidate(t *testing.T) {
	w := newWorkspace(t)

	if _, err := w.run("inspect", w.doc); err != nil {
		t.Errorf("inspect: %v", err)
	}
	if _, err := w.run("validate", w.doc); err != nil {
		t.Errorf("validate: %v", err)
	}

	broken := w.path("broken.json")
	writeFile(t, broken, `{"emf":"VERSION_1_1","style":0,"resource":[[0,`)
	if _, err := w.run("validate", w.doc, broken); err == nil {
		t.Error("validate should fail when one document is broken")
	}
}

func TestMissingSchemas(t *testing.T) {
	w := newWorkspace(t)
	writeFile(t, w.config, "")
	if _, err := w.run("inspect", w.doc); err == nil || !strings.Contains(err.Error(), "no package definitions") {
		t.Errorf("err = %v, want missing definitions", err)
	}
	if _, err := w.run("inspect", "--schema", w.schema, w.doc); err != nil {
		t.Errorf("inspect with --schema: %v", err)
	}
}

func TestConvert(t *testing.T) {
	w := newWorkspace(t)
	out := w.path("converted.json")

	if _, err := w.run("convert", w.doc, "--binary-enum", "-o", out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `{"emf":"VERSION_1_1","style":8,`) {
		t.Errorf("converted header = %.40s", data)
	}
	if _, err := w.run("validate", out); err != nil {
		t.Errorf("validate converted: %v", err)
	}

	if _, err := w.run("convert", w.doc, "--format-version", "2.0", "-o", out); err == nil {
		t.Error("unknown version should fail")
	}
}

func TestRender(t *testing.T) {
	w := newWorkspace(t)
	out := w.path("library.dot")

	if _, err := w.run("render", w.doc, "--detailed", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") || !strings.Contains(string(data), "title: Dune") {
		t.Errorf("unexpected DOT output:\n%s", data)
	}

	if _, err := w.run("render", w.doc, "-o", w.path("library.bmp")); err == nil {
		t.Error("unsupported extension should fail")
	}
}

func TestSchemaShow(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.run("schema", "show", w.schema, "--format", "toml")
	if err != nil {
		t.Fatalf("schema show: %v", err)
	}
	if !strings.Contains(out, `ns_uri = "http://example.com/library"`) {
		t.Errorf("toml output missing namespace:\n%s", out)
	}
	if _, err := w.run("schema", "check", w.schema); err != nil {
		t.Errorf("schema check: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	w := newWorkspace(t)

	if _, err := w.run("store", "put", w.doc, "--key", "library"); err != nil {
		t.Fatalf("store put: %v", err)
	}
	out := w.path("fetched.json")
	if _, err := w.run("store", "get", "library", "--check", "-o", out); err != nil {
		t.Fatalf("store get: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `{"emf":"VERSION_1_1"`) {
		t.Errorf("fetched document = %.40s", data)
	}
	if _, err := os.Stat(w.path("store")); err != nil {
		t.Errorf("store directory not created under the config dir: %v", err)
	}

	if _, err := w.run("store", "delete", "library"); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	_, err = w.run("store", "get", "library")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after delete: err = %v, want NOT_FOUND", err)
	}
}

func TestStorePutKeyModes(t *testing.T) {
	w := newWorkspace(t)

	if _, err := w.run("store", "put", w.doc, "--content"); err != nil {
		t.Errorf("put --content: %v", err)
	}
	if _, err := w.run("store", "put", w.doc, "--new"); err != nil {
		t.Errorf("put --new: %v", err)
	}
	if _, err := w.run("store", "put", w.doc, "--new", "--key", "x"); err == nil {
		t.Error("--new and --key together should fail")
	}
	if _, err := w.run("store", "put", w.doc, "--key", "../escape"); !errors.Is(err, errors.ErrCodeInvalidKey) {
		t.Errorf("bad key: err = %v, want INVALID_KEY", err)
	}
	if _, err := w.run("store", "clear"); err != nil {
		t.Errorf("store clear: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	w := newWorkspace(t)
	out, err := w.run("completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "graphwire") {
		t.Error("completion script should mention the command name")
	}
}
