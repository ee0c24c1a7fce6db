package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/coursecrawler/config"
	"github.com/dealmungchi/coursecrawler/internal"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/store"
	"github.com/dealmungchi/coursecrawler/logger"
	"github.com/dealmungchi/coursecrawler/services/worker"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "coursecrawler",
		Short:         "Crawl course catalogs into a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables
			godotenv.Load()

			// Initialize logger first
			logger.Init()

			// Load and validate configuration
			cfg = config.LoadConfig()
			if err := cfg.Validate(); err != nil {
				logger.Default.Error().Err(err).Msg("Invalid configuration")
				return err
			}
			return nil
		},
	}

	loaded := func() *config.Config { return cfg }
	root.AddCommand(
		newRunCmd(loaded),
		newServeCmd(loaded),
		newMigrateCmd(loaded),
		newCoursesCmd(loaded),
	)
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(cfg func() *config.Config) *cobra.Command {
	var (
		platform string
		start    int
		end      int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl one platform page range and ingest the courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			deps, err := internal.NewDependencies(ctx, cfg())
			if err != nil {
				return err
			}
			defer deps.Close()

			runner, err := deps.Runner()
			if err != nil {
				return err
			}

			summary, err := runner.Ingest(ctx, course.ParsePlatform(platform), start, end)
			renderSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", string(course.PlatformUdemy), "platform to crawl (udemy, pluralsight)")
	cmd.Flags().IntVar(&start, "start", 1, "first page, 1-indexed")
	cmd.Flags().IntVar(&end, "end", 1, "last page, inclusive")
	return cmd
}

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the configured platforms on CRAWL_SCHEDULE until stopped",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			log := logger.Default

			ctx, cancel := signalContext()
			defer cancel()

			deps, err := internal.NewDependencies(ctx, c)
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.Store.Migrate(ctx); err != nil {
				return err
			}

			runner, err := deps.Runner()
			if err != nil {
				return err
			}

			jobs := make([]worker.Job, 0, len(c.CrawlPlatforms))
			for _, p := range c.CrawlPlatforms {
				jobs = append(jobs, worker.Job{
					Platform:  course.ParsePlatform(p),
					StartPage: c.CrawlStartPage,
					EndPage:   c.CrawlEndPage,
				})
			}

			log.Info().
				Str("environment", c.Environment).
				Str("schedule", c.CrawlSchedule).
				Strs("platforms", c.CrawlPlatforms).
				Msg("Starting course worker")

			err = worker.NewWorker(runner, deps.Publisher, c.CrawlSchedule, jobs).Start(ctx)

			// Graceful shutdown
			log.Info().Msg("Shutting down gracefully...")
			return err
		},
	}
}

func newMigrateCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema for the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg(), func(ctx context.Context, s *store.Store) error {
				if err := s.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", s.Driver())
				return nil
			})
		},
	}
}

func newCoursesCmd(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Inspect and delete stored courses",
	}

	var opts store.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg(), func(ctx context.Context, s *store.Store) error {
				courses, err := s.ListCourses(ctx, opts)
				if err != nil {
					return err
				}
				renderCourses(cmd.OutOrStdout(), courses)
				return nil
			})
		},
	}
	list.Flags().IntVar(&opts.Limit, "limit", 50, "maximum number of courses")
	list.Flags().IntVar(&opts.Offset, "offset", 0, "number of courses to skip")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one course with its difficulty and authors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg(), func(ctx context.Context, s *store.Store) error {
				c, err := s.GetCourse(ctx, id)
				if err != nil {
					return err
				}
				renderCourse(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count stored rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg(), func(ctx context.Context, s *store.Store) error {
				st, err := s.Stats(ctx)
				if err != nil {
					return err
				}
				renderStats(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	cmd.AddCommand(
		list,
		show,
		stats,
		newDeleteCmd(cfg, "delete", "Delete a course and its author links", (*store.Store).DeleteCourse),
		newDeleteCmd(cfg, "delete-author", "Delete an author, detaching it from its courses", (*store.Store).DeleteAuthor),
		newDeleteCmd(cfg, "delete-difficulty", "Delete a difficulty, detaching it from its courses", (*store.Store).DeleteDifficulty),
	)
	return cmd
}

func newDeleteCmd(cfg func() *config.Config, use, short string, del func(*store.Store, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withStore(cfg(), func(ctx context.Context, s *store.Store) error {
				if err := del(s, ctx, id); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("id %d: %w", id, err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
				return nil
			})
		},
	}
}

// withStore opens the configured database for one command
func withStore(cfg *config.Config, fn func(ctx context.Context, s *store.Store) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
