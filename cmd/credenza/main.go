package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"credenza/internal/cache"
	"credenza/internal/config"
	"credenza/internal/ingest"
	"credenza/internal/list"
	"credenza/internal/logging"
	"credenza/internal/rss"
	"credenza/internal/version"
)

func main() {
	app := &cli.Command{
		Name:  "credenza",
		Usage: "Feed reader with a persistent article cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to config file (default ~/.config/credenza/config.yaml)"},
			&cli.StringFlag{Name: "db", Usage: "Override the cache database path"},
		},
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Download all configured feeds and merge them into the cache",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "log-dir", Usage: "Write a run log into this directory instead of stderr"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if dir := c.String("log-dir"); dir != "" {
						if err := logging.Init(config.ExpandPath(dir)); err != nil {
							return err
						}
						defer logging.Close()
					}
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := openCache(c, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					runCleanup := cfg.KeepOldArticles > 0
					n, err := ingest.New(cfg).FetchAll(ctx, store, runCleanup)
					if err != nil {
						return err
					}
					fmt.Printf("%d new articles\n", n)

					if cfg.CleanupOnQuit {
						return store.CleanupCache(ctx, cfg.Feeds)
					}
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List cached feeds, or the articles of one feed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "feed", Usage: "Feed URL to show articles for"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := openCache(c, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					if feedURL := c.String("feed"); feedURL != "" {
						ign, err := buildIgnores(cfg)
						if err != nil {
							return err
						}
						return list.Items(ctx, store, feedURL, ign)
					}
					return list.Feeds(ctx, store)
				},
			},
			{
				Name:  "search",
				Usage: "Full-text search over cached article titles and content",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "feed", Usage: "Restrict the search to one feed URL"},
				},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query", UsageText: "search terms"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := openCache(c, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					items, err := store.SearchForItems(ctx, c.StringArg("query"), c.String("feed"))
					if err != nil {
						return err
					}
					list.SearchResults(items)
					return nil
				},
			},
			{
				Name:  "read",
				Usage: "Mark an article (or a whole feed) as read",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Mark every article of the feed (or the whole cache) read"},
					&cli.BoolFlag{Name: "undo", Usage: "Mark unread instead"},
				},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "feed", UsageText: "feed URL"},
					&cli.StringArg{Name: "item", UsageText: "item key (omit with --all)"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := openCache(c, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					feedURL := c.StringArg("feed")
					if c.Bool("all") {
						return store.MarkAllRead(ctx, feedURL)
					}
					itemKey := c.StringArg("item")
					if feedURL == "" || itemKey == "" {
						return fmt.Errorf("need a feed URL and an item key (or --all)")
					}
					return store.MarkItemRead(ctx, feedURL, itemKey, !c.Bool("undo"))
				},
			},
			{
				Name:  "cleanup",
				Usage: "Delete old articles and prune unsubscribed feeds",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := openCache(c, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					deleted, err := store.CleanOldArticles(ctx)
					if err != nil {
						return err
					}
					if err := store.CleanupCache(ctx, cfg.Feeds); err != nil {
						return err
					}
					fmt.Printf("%d old articles removed\n", deleted)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a starter config file",
				Action: func(ctx context.Context, c *cli.Command) error {
					path, err := config.WriteDefault(config.Default())
					if err != nil {
						return err
					}
					fmt.Printf("config written to %s\n", path)
					fmt.Println("Add feed URLs under 'feeds:' and run 'credenza fetch'.")
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Println(version.GetVersion())
					return nil
				},
			},
		},
	}

	logging.InitStderr()
	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Error(err.Error())
		os.Exit(1)
	}
}

func loadConfig(c *cli.Command) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(config.ExpandPath(path))
	}
	return config.LoadDefault()
}

func openCache(c *cli.Command, cfg config.Config) (*cache.Cache, error) {
	path := cfg.DBPath()
	if override := c.String("db"); override != "" {
		path = config.ExpandPath(override)
	}
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return cache.Open(path, cache.Options{
		KeepDays:       cfg.KeepOldArticles,
		PreserveUnread: cfg.PreserveUnread,
	})
}

func buildIgnores(cfg config.Config) (*rss.Ignores, error) {
	ign := rss.NewIgnores()
	for _, e := range cfg.Ignore {
		if err := ign.Add(e.Scope, e.Pattern); err != nil {
			return nil, err
		}
	}
	return ign, nil
}

func dirOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if os.IsPathSeparator(p[i]) {
			if i == 0 {
				return string(p[0])
			}
			return p[:i]
		}
	}
	return "."
}
