package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/madkinsz/jrsonnet/internal/manifest"
	"github.com/madkinsz/jrsonnet/internal/value"
	"github.com/madkinsz/jrsonnet/pkg/jsonnet"
)

var (
	maxTrace      int
	traceFormat   string
	outputFormat  string
	outputPadding string
)

var evalCmd = &cobra.Command{
	Use:   "eval [ast.json]",
	Short: "Evaluate a serialized AST and manifest the result",
	Long: `Evaluate reads a Jsonnet AST serialized as JSON (from a file, or
from stdin if no file is given) and manifests the resulting value.

The wire format is a tree of objects tagged by "kind" (one per
internal/ast node, e.g. {"kind":"number","value":1},
{"kind":"binary","op":"+","left":...,"right":...}) — see
cmd/jsonnet/cmd/astjson.go for the full grammar. This binary has no
Jsonnet source parser of its own; a front end is expected to produce
this format.

Examples:
  # Evaluate a file, manifest as indented JSON (the default)
  jsonnet eval program.ast.json

  # Evaluate an inline expression from stdin as minified JSON
  echo '{"kind":"number","value":42}' | jsonnet eval --format minify

  # Render as YAML with an explaining trace on failure
  jsonnet eval --format yaml --trace-format explaining program.ast.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().IntVar(&maxTrace, "max-trace", 20, "maximum number of trace frames to render on error")
	evalCmd.Flags().StringVar(&traceFormat, "trace-format", "compact", "trace rendering style: compact or explaining")
	evalCmd.Flags().StringVar(&outputFormat, "format", "json", "manifest format: json, minify, tostring, yaml, yaml-stream, string, or multi")
	evalCmd.Flags().StringVar(&outputPadding, "indent", "  ", "indentation string for json/yaml output")
}

// noImporter reports every import as unsupported: this CLI reads a
// pre-built AST and has nowhere to resolve an import path against.
type noImporter struct{}

func (noImporter) ResolveFile(fromDir, path string) (string, error) { return fromDir + "/" + path, nil }
func (noImporter) Import(resolved string) (value.Value, error) {
	return nil, fmt.Errorf("cannot import %q: this CLI has no source parser to evaluate imported files", resolved)
}
func (noImporter) ImportStr(resolved string) (value.String, error) {
	return value.String{}, fmt.Errorf("cannot importstr %q: no filesystem access configured", resolved)
}
func (noImporter) ImportBin(resolved string) (value.Array, error) {
	return nil, fmt.Errorf("cannot importbin %q: no filesystem access configured", resolved)
}

func parseTraceFormat(s string) (jsonnet.TraceFormat, error) {
	switch s {
	case "compact":
		return jsonnet.TraceFormatCompact, nil
	case "explaining":
		return jsonnet.TraceFormatExplaining, nil
	default:
		return 0, fmt.Errorf("unknown --trace-format %q (want compact or explaining)", s)
	}
}

func runEval(_ *cobra.Command, args []string) error {
	tf, err := parseTraceFormat(traceFormat)
	if err != nil {
		return err
	}

	var data []byte
	var filename string
	if len(args) == 1 {
		filename = args[0]
		data, err = os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
	} else {
		filename = "<stdin>"
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "decoding AST from %s (%d bytes)\n", filename, len(data))
	}

	node, err := DecodeExpr(data)
	if err != nil {
		return fmt.Errorf("failed to decode AST: %w", err)
	}

	engine := jsonnet.New(noImporter{}, jsonnet.WithMaxTrace(maxTrace), jsonnet.WithTraceFormat(tf))

	if verbose {
		fmt.Fprintf(os.Stderr, "evaluating with max-trace=%d trace-format=%s format=%s\n", maxTrace, traceFormat, outputFormat)
	}

	v, err := engine.EvalFile(node, filename)
	if err != nil {
		return fmt.Errorf("%s", engine.FormatError(err))
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "manifesting result")
	}

	out, err := renderOutput(engine, v)
	if err != nil {
		return fmt.Errorf("%s", engine.FormatError(err))
	}

	fmt.Print(out)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

func renderOutput(engine *jsonnet.Engine, v value.Value) (string, error) {
	jsonOpts := manifest.DefaultJSONOptions()
	jsonOpts.Padding = outputPadding
	yamlOpts := manifest.DefaultYAMLOptions()
	yamlOpts.Padding = outputPadding
	yamlOpts.ArrElementPadding = outputPadding

	switch outputFormat {
	case "json":
		return engine.ManifestJSON(v, jsonOpts)
	case "minify":
		jsonOpts.Mode = manifest.ModeMinify
		return engine.ManifestJSON(v, jsonOpts)
	case "tostring":
		jsonOpts.Mode = manifest.ModeToString
		return engine.ManifestJSON(v, jsonOpts)
	case "yaml":
		return engine.ManifestYAML(v, yamlOpts)
	case "yaml-stream":
		return engine.ManifestYAMLStream(v, yamlOpts)
	case "string":
		return engine.ManifestString(v)
	case "multi":
		multi, err := engine.ManifestMulti(v, jsonOpts)
		if err != nil {
			return "", err
		}
		var sb []byte
		for name, text := range multi {
			sb = append(sb, fmt.Sprintf("==> %s <==\n%s\n", name, text)...)
		}
		return string(sb), nil
	default:
		return "", fmt.Errorf("unknown --format %q", outputFormat)
	}
}
