// backend/cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "miniplex",
	Short: "Answer engine over web and video search",
	Long: `miniplex fans a question out to Brave, Serper and YouTube, pulls the
readable text from the top hits and asks a Cloudflare Workers AI model for
an answer with citations.

  miniplex serve               # run the HTTP API
  miniplex ask "what is go"    # answer one question in the terminal`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			utils.GetLogger().SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd, askCmd)
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		utils.GetLogger().WithError(err).Debug("No .env file found")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
