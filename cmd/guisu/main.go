// Command guisu synchronizes a versioned dotfile repository into a
// destination tree (typically the user's home directory), with per-host
// templating, encryption of sensitive content, and drift detection. This
// command is the ambient entry point around the reconciliation engine in
// pkg/engine; it owns argument parsing, configuration assembly, and report
// rendering, none of which the engine itself knows about.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guisu-dotfiles/guisu/cmd"
	"github.com/guisu-dotfiles/guisu/pkg/version"
)

// rootCommand is the top-level "guisu" command.
var rootCommand = &cobra.Command{
	Use:          "guisu",
	Short:        "Reconcile a dotfile repository against the local filesystem",
	SilenceUsage: true,
}

// rootFlags holds the persistent flags attached to rootCommand.
var rootFlags struct {
	logLevel string
	profile  bool
	help     bool
}

func init() {
	rootCommand.PersistentFlags().SortFlags = false

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootFlags.logLevel, "log-level", "info", "log level (disabled|error|warn|info|debug|trace)")
	flags.BoolVar(&rootFlags.profile, "profile", false, "write a CPU profile for this invocation")
	flags.BoolVarP(&rootFlags.help, "help", "h", false, "show help information")

	rootCommand.AddCommand(diffCommand, applyCommand, versionCommand)
}

// versionCommand prints the guisu version.
var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cmd.DisallowArguments,
	Run: cmd.Mainify(func(*cobra.Command, []string) error {
		fmt.Println(version.Semantic)
		return nil
	}),
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
