package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/simplesocial/social-server/internal/client"
)

var version = "1.0.0"

const defaultAPIURL = "http://localhost:8000"

var (
	apiURL      string
	sessionFile string
	timeout     time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "social-cli",
	Short: "Simple Social client - share images and videos from the terminal",
	Long: `social-cli is the command-line client for the Simple Social API.

The session (token and current user) is stored in a YAML file so that
later commands reuse it until you log out.

Examples:
  social-cli signup --email a@x.com --password secret
  social-cli login --email a@x.com --password secret
  social-cli upload ./beach.png --caption "hi"
  social-cli feed
  social-cli delete post_01hzx...`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(deleteCmd)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("SOCIAL_API_URL", defaultAPIURL), "Simple Social API base URL")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file (default <user config dir>/simple-social/session.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setup loads the stored session and builds the views for a command.
// A stored session for a different API URL is ignored.
func setup(cmd *cobra.Command) (*client.Views, *client.Session, error) {
	path := sessionFile
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, nil, fmt.Errorf("resolve session path: %w", err)
		}
	}

	store := client.NewSessionStore(path)
	sess, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	if sess.BaseURL != apiURL {
		sess = &client.Session{BaseURL: apiURL}
	}

	views := client.NewViews(client.NewAPIClient(apiURL, timeout), store, cmd.OutOrStdout())
	return views, sess, nil
}
