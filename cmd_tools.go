package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
	"github.com/ee99ee/codemagic-mcp-improved/internal/tools"
)

func newToolsCmd(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := toolsRegistry(cmd, opts)
			if err != nil {
				return err
			}
			return listTools(cmd.OutOrStdout(), registry)
		},
	}

	var output string
	call := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Call one tool directly and print its result",
		Example: `  codemagic-mcp tools call get_builds '{"app_id":"5d85eaa0e941e00019e81bc2"}'
  codemagic-mcp tools call get_artifact '{"secure_filename":"u1/u2/app.apk"}' -o app.apk`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := toolsRegistry(cmd, opts)
			if err != nil {
				return err
			}
			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			}
			out, err := registry.Dispatch(cmd.Context(), args[0], raw)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), out, output)
		},
	}
	call.Flags().StringVarP(&output, "output", "o", "", "write a downloaded artifact to this file")
	cmd.AddCommand(call)
	return cmd
}

func toolsRegistry(cmd *cobra.Command, opts *serveOptions) (*tools.Registry, error) {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: log.WarnLevel})
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && lvl > log.WarnLevel {
		logger.SetLevel(lvl)
	}
	return newRegistry(cfg, logger)
}

func listTools(w io.Writer, registry *tools.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range registry.Names() {
		def, err := registry.Tool(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, def.Description)
	}
	return tw.Flush()
}

// printResult writes a tool result as indented JSON. Artifacts are written
// raw, to file when one is given.
func printResult(w io.Writer, out any, file string) error {
	if a, ok := out.(*codemagic.Artifact); ok {
		if file == "" {
			_, err := w.Write(a.Data)
			return err
		}
		if err := os.WriteFile(file, a.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
		fmt.Fprintf(w, "wrote %d bytes (%s) to %s\n", len(a.Data), a.ContentType, file)
		return nil
	}

	b, err := jsonx.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
