// main.go sets up the command-line interface for the biblio library
// administration client using Cobra. It defines the root command, the
// configuration bootstrap, and the shared gateway client that every
// subcommand talks through.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/jandresbramirez/go-biblio/gateway"
)

var version = "dev" // set by the linker
var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

var rootCmd *cobra.Command

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()

	// Defaults apply when neither the config file nor flags set a value.
	viper.SetDefault("api.base_url", "http://localhost:5000")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("session.path", "")
}

// newRootCmd creates and configures a new root cobra command. Tests create
// fresh instances through this function instead of sharing the global.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biblio",
		Short: "biblio is a command-line client for the library administration API.",
		Long: `biblio manages a library catalog over its REST API: authors, books,
member accounts, and loans. Sessions persist between invocations, so you
log in once and keep working until you log out.

Run 'biblio login' first; most commands need an authenticated session.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(loginCmd)
	cmd.AddCommand(logoutCmd)
	cmd.AddCommand(whoamiCmd)
	cmd.AddCommand(registerCmd)
	cmd.AddCommand(authorsCmd)
	cmd.AddCommand(booksCmd)
	cmd.AddCommand(usersCmd)
	cmd.AddCommand(loansCmd)
	cmd.AddCommand(dashboardCmd)

	cmd.Version = version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.biblio.yaml or ./.biblio.yaml)")
	cmd.PersistentFlags().String("api-url", "http://localhost:5000", "base URL of the library API")
	cmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")

	viper.BindPFlag("api.base_url", cmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("api.timeout", cmd.PersistentFlags().Lookup("timeout"))

	return cmd
}

// initConfig reads the configuration file and environment variables. Viper
// searches the home and current directories for a .biblio.yaml; BIBLIO_
// prefixed environment variables override file values.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".biblio")
	}

	viper.SetEnvPrefix("BIBLIO")
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// newGatewayClient builds the API client from the resolved configuration,
// backed by the on-disk session file so logins survive between runs.
func newGatewayClient() (*gateway.Client, error) {
	sessionPath := viper.GetString("session.path")
	if sessionPath == "" {
		path, err := biblio.DefaultSessionPath()
		if err != nil {
			return nil, fmt.Errorf("resolving session path: %w", err)
		}
		sessionPath = path
	}

	sessions := biblio.NewSessionStore(biblio.NewFileStorage(sessionPath))

	client := gateway.NewClient(gateway.Config{
		BaseURL: viper.GetString("api.base_url"),
		HTTPClient: &http.Client{
			Timeout: viper.GetDuration("api.timeout"),
		},
	}, sessions)

	return client, nil
}
