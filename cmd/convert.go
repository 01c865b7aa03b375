// File: cmd/convert.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/observability"
	"github.com/xkilldash9x/framesmith/internal/scenegraph"
	"github.com/xkilldash9x/framesmith/internal/styletree"
)

func newConvertCmd() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Converts saved design documents into style trees",
		Long: `Each file holds either a bare document node or a full nodes API response.
The style tree is written next to the input as <name>-parsed.<ext> unless --stdout is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			applyConvertFlags(cmd, cfg)

			format, err := styletree.ParseFormat(cfg.Convert().Format)
			if err != nil {
				return err
			}
			dialect, err := scenegraph.ParseDialect(cfg.Figma().BackgroundDialect)
			if err != nil {
				return err
			}
			opts := scenegraph.DecodeOptions{Dialect: dialect}

			roots := make([]scenegraph.Node, len(args))
			for i, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				node, err := scenegraph.DecodeDocument(data, "", opts)
				if err != nil {
					return fmt.Errorf("failed to decode %s: %w", path, err)
				}
				roots[i] = node
			}

			trees, err := styletree.ConvertAll(ctx, roots, cfg.Convert().Concurrency)
			if err != nil {
				return err
			}

			toStdout, _ := cmd.Flags().GetBool("stdout")
			for i, tree := range trees {
				out, err := styletree.Marshal(tree, format)
				if err != nil {
					return err
				}
				if toStdout {
					fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
					continue
				}

				dest := outputPath(args[i], cfg.Convert().OutputSuffix, format)
				if err := writeFile(dest, out); err != nil {
					return err
				}
				logger.Info("Converted document", zap.String("input", args[i]), zap.String("output", dest))
			}
			return nil
		},
	}

	convertCmd.Flags().Bool("stdout", false, "Print style trees to stdout instead of writing files.")
	convertCmd.Flags().IntP("concurrency", "j", 0, "Number of documents converted at once. (Overrides config/env)")
	convertCmd.Flags().StringP("format", "f", "", "Output format: json, json-indent or yaml. (Overrides config/env)")

	return convertCmd
}

// applyConvertFlags copies explicitly set flags onto the configuration.
func applyConvertFlags(cmd *cobra.Command, cfg config.Interface) {
	if cmd.Flags().Changed("concurrency") {
		n, _ := cmd.Flags().GetInt("concurrency")
		cfg.SetConvertConcurrency(n)
	}
	if cmd.Flags().Changed("format") {
		f, _ := cmd.Flags().GetString("format")
		cfg.SetConvertFormat(f)
	}
}

// outputPath derives <dir>/<name><suffix><ext> from an input path.
func outputPath(input, suffix string, format styletree.Format) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), name+suffix+format.Extension())
}
