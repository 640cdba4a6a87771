package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphwire/pkg/document"
	"github.com/matzehuels/graphwire/pkg/errors"
	"github.com/matzehuels/graphwire/pkg/location"
	"github.com/matzehuels/graphwire/pkg/model"
	"github.com/matzehuels/graphwire/pkg/store"
)

// storeCommand creates the store command with its subcommands.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Put, get and delete documents in the configured store",
		Long: `Manage documents in the store selected by the [store] section of the
config file: a local directory (default), Redis or MongoDB.`,
	}
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeInfoCommand())
	cmd.AddCommand(c.storeClearCommand())
	return cmd
}

func (c *CLI) storePutCommand() *cobra.Command {
	var (
		flags   codecFlags
		key     string
		content bool
		random  bool
	)

	cmd := &cobra.Command{
		Use:   "put <document>",
		Short: "Decode a document and store its encoding",
		Long: `Decode a document, encode it with the current options and store it.

By default the key is derived from the document's location and the encoding
options, so storing the same document twice replaces the first copy.
--content keys by the encoded bytes instead, --new generates a fresh key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if countTrue(key != "", content, random) > 1 {
				return fmt.Errorf("--key, --content and --new are mutually exclusive")
			}
			doc, err := c.load(ctx, args[0], flags)
			if err != nil {
				return err
			}
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := doc.opts
			opts.TTL = c.Config.Store.TTL
			keyer := c.Config.Store.Keyer()

			var result document.Result
			switch {
			case content:
				var data []byte
				data, result, err = document.Encode(ctx, doc.res, opts)
				if err != nil {
					return err
				}
				key = keyer.ContentKey(data)
				err = store.RetryWithBackoff(ctx, func() error {
					return s.Set(ctx, key, data, opts.TTL)
				})
			default:
				if random {
					key = store.NewKey(c.Config.Store.Scope + "doc")
				} else if key == "" {
					key = keyer.DocumentKey(doc.res.URI(), store.DocumentKeyOpts{
						Version: opts.Codec.Version.String(),
						Style:   int(opts.Codec.Style),
					})
				}
				result, err = document.Save(ctx, s, key, doc.res, opts)
			}
			if err != nil {
				return err
			}

			printSuccess("Stored %s %s", args[0], StyleDim.Render(fmt.Sprintf("(%d bytes)", result.Size)))
			printKeyValue("Key", key)
			c.Logger.Debug("stored document", "key", shortKey(key), "digest", result.Digest)
			return nil
		},
	}

	flags.registerRead(cmd)
	flags.registerWrite(cmd)
	cmd.Flags().StringVar(&key, "key", "", "store under this key")
	cmd.Flags().BoolVar(&content, "content", false, "key by the hash of the encoded document")
	cmd.Flags().BoolVar(&random, "new", false, "generate a fresh random key")
	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var (
		flags  codecFlags
		output string
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch a stored document",
		Long: `Fetch the document stored under key and write it to --output or stdout.
With --check the document is decoded first and nothing is written if that
fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := args[0]
			if err := errors.ValidateKey(key); err != nil {
				return err
			}
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var (
				data  []byte
				found bool
			)
			err = store.RetryWithBackoff(ctx, func() error {
				var err error
				data, found, err = s.Get(ctx, key)
				return err
			})
			if err != nil {
				return err
			}
			if !found {
				return errors.New(errors.ErrCodeNotFound, "no document stored under %q", key)
			}

			if check {
				if err := c.checkStored(cmd, data, output, flags); err != nil {
					return err
				}
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			if output != "" && output != "-" {
				printFile(output)
			}
			return nil
		},
	}

	flags.registerRead(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&check, "check", false, "decode the document before writing it")
	return cmd
}

// checkStored decodes data as if it were read from output.
func (c *CLI) checkStored(cmd *cobra.Command, data []byte, output string, flags codecFlags) error {
	reg, err := c.registry(flags)
	if err != nil {
		return err
	}
	copts, err := c.codecOptions(flags)
	if err != nil {
		return err
	}
	var uri string
	if output != "" && output != "-" {
		if uri, err = location.FromPath(output); err != nil {
			return err
		}
	}
	res := model.NewResourceSet(reg).CreateResource(uri)
	result, err := document.Decode(cmd.Context(), data, res, document.Options{Codec: copts})
	if err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("checked stored document",
		"objects", result.Stats.Objects, "recovered", result.Stats.Recovered)
	return nil
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>...",
		Short: "Delete stored documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, key := range args {
				if err := errors.ValidateKey(key); err != nil {
					return err
				}
				if err := s.Delete(ctx, key); err != nil {
					return err
				}
				printSuccess("Deleted %s", shortKey(key))
			}
			return nil
		},
	}
}

func (c *CLI) storeInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Store
			backend := firstNonEmpty(cfg.Backend, store.BackendFile)
			printKeyValue("Backend", backend)
			switch backend {
			case store.BackendFile:
				printKeyValue("Directory", cfg.Dir)
			case store.BackendRedis:
				printKeyValue("Address", cfg.Redis.Addr)
				printKeyValue("Prefix", cfg.Redis.Prefix)
			case store.BackendMongo:
				printKeyValue("Collection", cfg.Mongo.Database+"."+cfg.Mongo.Collection)
			}
			printKeyValue("Compress", fmt.Sprint(cfg.Compress))
			if cfg.TTL > 0 {
				printKeyValue("TTL", cfg.TTL.String())
			}
			if cfg.Scope != "" {
				printKeyValue("Scope", cfg.Scope)
			}
			return nil
		},
	}
}

func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			clearer, ok := s.(store.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "the %s store cannot be cleared", c.Config.Store.Backend)
			}
			if err := clearer.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Store cleared")
			return nil
		},
	}
}

func countTrue(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
