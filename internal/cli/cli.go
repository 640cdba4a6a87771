// Package cli implements the graphwire command-line interface.
//
// The commands decode documents with package definitions loaded from YAML or
// TOML schema files, report on them, re-encode them with other options, draw
// them, and move them in and out of a document store. The CLI is built using
// cobra and logs with charmbracelet/log.
//
// # Commands
//
//   - inspect: Show a document's header, statistics and class histogram
//   - validate: Decode documents and report failures
//   - convert: Re-encode a document with another version, style or backend
//   - render: Draw a document as DOT, SVG, PDF or PNG
//   - schema: Check and print package definitions
//   - store: Put, get and delete documents in the configured store
//
// # Configuration
//
// Defaults for schemas, encoding and the store backend are read from
// $XDG_CONFIG_HOME/graphwire/config.toml, or the file named by --config.
// See [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/codec"
	"github.com/matzehuels/graphwire/pkg/document"
	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/metamodel"
	"github.com/matzehuels/graphwire/pkg/model"
	"github.com/matzehuels/graphwire/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "graphwire"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Codec Options
// =============================================================================

// codecFlags are the encoding flags shared by commands that decode or write
// documents. Empty values fall back to the configuration file.
type codecFlags struct {
	schemas         []string
	version         string
	style           string
	backend         string
	binaryEnum      bool
	proxyAttributes bool
}

// registerRead adds the flags needed to decode documents.
func (f *codecFlags) registerRead(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.schemas, "schema", "s", nil, "package definition file (.yaml, .toml); repeatable")
	cmd.Flags().StringVar(&f.backend, "json", "", "JSON backend: std, segment, lenient")
}

// registerWrite adds the flags that control encoding.
func (f *codecFlags) registerWrite(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.version, "format-version", "", "format version: VERSION_1_0, VERSION_1_1")
	cmd.Flags().StringVar(&f.style, "style", "", "style flags, e.g. \"binary-enumerator|proxy-attributes\"")
	cmd.Flags().BoolVar(&f.binaryEnum, "binary-enum", false, "write enum values as ordinals")
	cmd.Flags().BoolVar(&f.proxyAttributes, "proxy-attributes", false, "write the attributes of proxies")
}

// codecOptions merges flags over the configuration file.
func (c *CLI) codecOptions(f codecFlags) (codec.Options, error) {
	opts := codec.Options{Logger: c.Logger}
	cfg := c.Config.Encode

	if v := firstNonEmpty(f.version, cfg.Version); v != "" {
		version, err := codec.ParseVersion(v)
		if err != nil {
			return opts, err
		}
		opts.Version = version
	}
	style, err := codec.ParseStyle(firstNonEmpty(f.style, cfg.Style))
	if err != nil {
		return opts, err
	}
	if f.binaryEnum {
		style |= codec.StyleBinaryEnumerator
	}
	if f.proxyAttributes {
		style |= codec.StyleProxyAttributes
	}
	opts.Style = style

	backend, err := jsonval.ByName(firstNonEmpty(f.backend, cfg.Backend))
	if err != nil {
		return opts, err
	}
	opts.Backend = backend
	return opts, opts.ValidateAndSetDefaults()
}

// registry loads the package definitions named by flags and configuration.
func (c *CLI) registry(f codecFlags) (*model.Registry, error) {
	paths := append(append([]string{}, f.schemas...), c.Config.Schemas...)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no package definitions: pass --schema or set schemas in the config file")
	}
	c.Logger.Debug("loading package definitions", "files", paths)
	return metamodel.LoadRegistry(paths...)
}

// loaded is a decoded document.
type loaded struct {
	res    *model.Resource
	result document.Result
	opts   document.Options
}

// load decodes the document at path into a fresh resource set.
func (c *CLI) load(ctx context.Context, path string, f codecFlags) (*loaded, error) {
	reg, err := c.registry(f)
	if err != nil {
		return nil, err
	}
	copts, err := c.codecOptions(f)
	if err != nil {
		return nil, err
	}
	uri, err := location.FromPath(path)
	if err != nil {
		return nil, err
	}
	res := model.NewResourceSet(reg).CreateResource(uri)
	opts := document.Options{Codec: copts}

	result, err := document.LoadFile(ctx, path, res, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &loaded{res: res, result: result, opts: opts}, nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the configured document store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	c.Logger.Debug("opening store", "backend", cfg.Backend, "compress", cfg.Compress)
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return s, nil
}

// =============================================================================
// Helpers
// =============================================================================

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// writeOutput writes data to path, or to stdout when path is "" or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// shortKey abbreviates long hashed keys for display.
func shortKey(key string) string {
	prefix, hash, ok := strings.Cut(key, ":")
	if !ok || len(hash) <= 16 {
		return key
	}
	return prefix + ":" + hash[:12] + "…"
}
