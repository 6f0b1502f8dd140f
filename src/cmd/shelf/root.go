package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"shelf/src/internal/catalog"
	"shelf/src/internal/config"
	"shelf/src/internal/enrich"
	"shelf/src/internal/feedback"
	"shelf/src/internal/gitutil"
	"shelf/src/internal/googlebooks"
	"shelf/src/internal/httpx"
	"shelf/src/internal/logging"
	"shelf/src/internal/openlibrary"
	"shelf/src/internal/store"
)

// source is a bibliographic source that can also return its raw answer.
type source interface {
	enrich.Source
	Raw(ctx context.Context, id string) (json.RawMessage, bool)
}

type committer interface {
	Commit(ctx context.Context, path, message string) error
}

// indirections for testability
var (
	newHTTPClient = func(timeout time.Duration) httpx.Doer { return &http.Client{Timeout: timeout} }
	newCommitter  = func(push bool) committer { return gitutil.New(push) }
)

// app carries everything a command needs once configuration is resolved.
type app struct {
	cfg         config.Config
	openLibrary source
	googleBooks source
	engine      *enrich.Engine
	store       store.Store
	commit      committer
	cue         feedback.Cue
}

type rootFlags struct {
	config   string
	catalog  string
	backend  string
	logLevel string
	sound    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var flags rootFlags
	root := &cobra.Command{
		Use:           "shelf",
		Short:         "Personal book catalog keyed by ISBN, enriched from Open Library and Google Books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, flags)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default: shelf.yaml in . or $HOME)")
	pf.StringVar(&flags.catalog, "catalog", "", "catalog file (overrides catalog.path)")
	pf.StringVar(&flags.backend, "backend", "", "catalog backend: csv or sqlite (overrides catalog.backend)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.sound, "sound", false, "ring the terminal bell after each scan")

	root.AddCommand(
		newScanCmd(a),
		newAddCmd(a),
		newEnrichCmd(a),
		newShowCmd(a),
		newLookupCmd(a),
		newExportCmd(a),
	)
	return root
}

// setup resolves configuration and builds the logger, sources, engine and store.
func (a *app) setup(cmd *cobra.Command, flags rootFlags) error {
	config.LoadEnv()
	v, err := config.NewViper(flags.config)
	if err != nil {
		return err
	}
	pf := cmd.Flags()
	for key, name := range map[string]string{
		"catalog.path":    "catalog",
		"catalog.backend": "backend",
		"log.level":       "log-level",
		"feedback.sound":  "sound",
	} {
		if f := pf.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger := logging.New(cmd.ErrOrStderr(), cfg.Log)
	logging.SetDefault(logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger))

	fetcher := httpx.NewFetcher(newHTTPClient(cfg.HTTP.Timeout), cfg.HTTP.RPS, cfg.HTTP.Retries)
	a.openLibrary = openlibrary.New(fetcher)
	a.googleBooks = googlebooks.New(fetcher, cfg.Google.APIKey)
	a.engine = &enrich.Engine{OpenLibrary: a.openLibrary, GoogleBooks: a.googleBooks}

	s, err := store.Open(cfg.Catalog.Backend, cfg.Catalog.Path)
	if err != nil {
		return err
	}
	a.store = s
	if cfg.Catalog.Commit {
		a.commit = newCommitter(cfg.Catalog.Push)
	}
	a.cue = feedback.For(cfg.Feedback.Sound, cmd.OutOrStdout())
	logger.Debug().Str("catalog", cfg.Catalog.Path).Str("backend", cfg.Catalog.Backend).Msg("configured")
	return nil
}

func (a *app) load(ctx context.Context) (*catalog.Catalog, error) {
	c, err := a.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// save persists c and, when enabled, commits the catalog file.
func (a *app) save(ctx context.Context, c *catalog.Catalog, action string, keys []string) error {
	if err := a.store.Save(ctx, c); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	logging.Ctx(ctx).Debug().Int("books", c.Len()).Str("path", a.store.Path()).Msg("catalog saved")
	if a.commit == nil {
		return nil
	}
	return a.commit.Commit(ctx, a.store.Path(), gitutil.Message(action, keys))
}
