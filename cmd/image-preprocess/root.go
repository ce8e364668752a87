package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-preprocess-mcp/internal/apk"
	"github.com/ironsheep/image-preprocess-mcp/internal/config"
	"github.com/ironsheep/image-preprocess-mcp/internal/iconcache"
	"github.com/ironsheep/image-preprocess-mcp/internal/logger"
	"github.com/ironsheep/image-preprocess-mcp/internal/preprocess"
)

type rootFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "image-preprocess",
		Short: "MCP server that preprocesses image sources",
		Long: `image-preprocess turns image source identifiers that a plain image loader
cannot read into local resources:

  /path/to/app.apk                 launcher icon of a package archive
  app.icon://com.example.app       launcher icon of an installed application
  data:image/png;base64,...        inline base64 image

Without a subcommand it serves MCP over stdin/stdout. Logs go to stderr.

Environment variables:
  IMAGE_PREPROCESS_LOG_LEVEL   debug, info, warn or error
  IMAGE_PREPROCESS_CACHE_DIR   icon artifact directory
  IMAGE_PREPROCESS_APPS_DIR    directory of installed archives`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a TOML config file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVar(&flags.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		newServeCmd(flags),
		newResolveCmd(flags),
		newClassifyCmd(),
		newVersionCmd(),
	)
	return root
}

// app holds the components built from configuration.
type app struct {
	cfg      config.Config
	log      logger.Logger
	registry *preprocess.Registry
	cache    *iconcache.Store
	apps     *apk.DirRegistry
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logJSON {
		cfg.LogJSON = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: cmd.ErrOrStderr(),
	})

	cache, err := iconcache.New(iconcache.Config{
		Dir:           cfg.Cache.Dir,
		MemoryEntries: cfg.Cache.MemoryEntries,
		MaxEdge:       cfg.Cache.IconMaxSize,
	}, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, cache: cache}
	deps := preprocess.Deps{Cache: cache, Log: log}
	if cfg.Apps.Dir != "" {
		a.apps = apk.NewDirRegistry(cfg.Apps.Dir, nil, log)
		deps.Apps = a.apps
	}
	a.registry = preprocess.NewDefault(deps)

	log.Debug("configured",
		"cache_dir", cfg.Cache.Dir,
		"apps_dir", cfg.Apps.Dir,
		"preprocessors", a.registry.Keys())
	return a, nil
}
