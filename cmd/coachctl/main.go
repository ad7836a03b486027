package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandilya-stack/coach-server/client"
	"github.com/sandilya-stack/coach-server/internal/model"
)

var (
	serviceURL string
	userID     string
	debug      bool
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coachctl",
		Short:         "Command line client for the coach service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "server", getEnv("COACH_SERVICE_URL", "http://localhost:8080"), "Base URL of the coach service")
	rootCmd.PersistentFlags().StringVar(&userID, "user", getEnv("COACH_USER_ID", ""), "User id to act as")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Dump HTTP requests and responses")

	rootCmd.AddCommand(newCreateSessionCmd())
	rootCmd.AddCommand(newListSessionsCmd())
	rootCmd.AddCommand(newGetSessionCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newSwipeCmd())
	rootCmd.AddCommand(newRegenerateCmd())
	rootCmd.AddCommand(newPreferencesCmd())
	rootCmd.AddCommand(newValuableTipsCmd())
	return rootCmd
}

func newCreateSessionCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "create-session",
		Short: "Store a brain dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.CreateSession(ctx, text)
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Brain dump text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newListSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-sessions",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.ListSessions(ctx)
			})
		},
	}
}

func newGetSessionCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "get-session",
		Short: "Show a session with its analysis and archived tips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.GetSession(ctx, sessionID)
			})
		},
	}
	sessionFlag(cmd, &sessionID)
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate tips for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.AnalyzeSession(ctx, sessionID)
			})
		},
	}
	sessionFlag(cmd, &sessionID)
	return cmd
}

func newSwipeCmd() *cobra.Command {
	var sessionID, tipID, direction string
	cmd := &cobra.Command{
		Use:   "swipe",
		Short: "Swipe a tip left or right",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := model.ParseSwipeDirection(direction)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.SwipeTip(ctx, sessionID, tipID, client.SwipeDirection(dir))
			})
		},
	}
	sessionFlag(cmd, &sessionID)
	cmd.Flags().StringVar(&tipID, "tip", "", "Tip id")
	cmd.Flags().StringVar(&direction, "direction", "", "left or right")
	_ = cmd.MarkFlagRequired("tip")
	_ = cmd.MarkFlagRequired("direction")
	return cmd
}

func newRegenerateCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Archive current tips and generate new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.RegenerateTips(ctx, sessionID)
			})
		},
	}
	sessionFlag(cmd, &sessionID)
	return cmd
}

func newPreferencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preferences",
		Short: "Show learned tag counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.GetPreferences(ctx)
			})
		},
	}
}

func newValuableTipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "valuable-tips",
		Short: "List every right-swiped tip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) (any, error) {
				return c.ValuableTips(ctx)
			})
		},
	}
}

func sessionFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "session", "", "Session id")
	_ = cmd.MarkFlagRequired("session")
}

// run builds a client from the persistent flags, calls fn and prints its result as JSON.
func run(cmd *cobra.Command, fn func(context.Context, *client.Client) (any, error)) error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	c, err := client.New(serviceURL, userID, client.WithDebugLogging(debug))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	out, err := fn(ctx, c)
	log.Debug().Str("command", cmd.Name()).Dur("elapsed", time.Since(start)).Msg("request finished")
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
