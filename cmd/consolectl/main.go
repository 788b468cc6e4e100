// Command consolectl is a terminal front end for the back-office admin API:
// it renders the merged activity view and follows the notification feed.
package main

import (
	"fmt"
	"os"
	"time"

	"backoffice/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CONSOLE")
	v.AutomaticEnv()
	v.SetDefault("url", "http://localhost:8080")
	v.SetDefault("timeout", 30*time.Second)

	rootCmd := &cobra.Command{
		Use:           "consolectl",
		Short:         "Back-office console for customers, payments and notifications",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("url", "", "API base URL (env CONSOLE_URL)")
	rootCmd.PersistentFlags().String("token", "", "admin token or JWT (env CONSOLE_TOKEN)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "request timeout (env CONSOLE_TIMEOUT)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log client activity to stderr")
	_ = v.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	_ = v.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = v.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	env := &cliEnv{v: v}
	rootCmd.AddCommand(activityCmd(env))
	rootCmd.AddCommand(notificationsCmd(env))
	rootCmd.AddCommand(tokenCmd())
	return rootCmd
}

// cliEnv builds the API client from flags and environment.
type cliEnv struct {
	v      *viper.Viper
	logger *zap.Logger
}

func (e *cliEnv) Logger() *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	e.logger = zap.NewNop()
	if e.v.GetBool("verbose") {
		if l, err := zap.NewDevelopment(); err == nil {
			e.logger = l
		}
	}
	return e.logger
}

func (e *cliEnv) Client() (*client.Client, error) {
	token := e.v.GetString("token")
	if token == "" {
		return nil, fmt.Errorf("no API token: pass --token or set CONSOLE_TOKEN")
	}
	timeout := e.v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return client.NewClient(e.v.GetString("url"), token,
		client.WithLogger(e.Logger()),
		client.WithHTTPClient(newHTTPClient(timeout)),
	), nil
}
