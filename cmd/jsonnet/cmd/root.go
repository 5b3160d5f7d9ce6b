package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// verbose enables extra diagnostic lines on stderr (see eval.go).
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jsonnet",
	Short: "A Jsonnet data-templating language evaluator",
	Long: `jsonnet evaluates a serialized Jsonnet AST and manifests the
result as JSON or YAML.

This binary has no parser of its own: it reads the AST as JSON (see
"jsonnet eval --help" for the wire format) and hands it to the
evaluation core, demonstrating the pkg/jsonnet embedding facade
end-to-end.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print AST size, trace/format settings and manifest progress to stderr")
}
