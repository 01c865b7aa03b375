// File: cmd/fetch.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/observability"
	"github.com/xkilldash9x/framesmith/internal/styletree"
)

// newFigmaClient builds the design API client used by fetch. Tests replace it.
var newFigmaClient = func(cmd *cobra.Command) (fetcher, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	client, err := figma.NewClient(cfg.Figma(), observability.GetLogger())
	if err != nil {
		return nil, err
	}
	return client, nil
}

// fetcher is the part of the design API client fetch depends on.
type fetcher interface {
	FetchNode(ctx context.Context, link figma.Link) (*figma.FetchResult, error)
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func newFetchCmd() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch [link]",
		Short: "Downloads a frame and shows its raw and processed documents",
		Args:  cobra.ExactArgs(1),
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

			link, err := figma.ParseLink(args[0])
			if err != nil {
				return err
			}

			client, err := newFigmaClient(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize design API client: %w", err)
			}

			result, err := client.FetchNode(ctx, link)
			if err != nil {
				return fmt.Errorf("failed to fetch frame: %w", err)
			}

			var raw bytes.Buffer
			if err := jsonIndent(&raw, result.Document); err != nil {
				return err
			}
			processed, err := styletree.Marshal(styletree.Convert(result.Node), format)
			if err != nil {
				return err
			}

			outDir, _ := cmd.Flags().GetString("out-dir")
			if outDir == "" {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "-- raw --")
				fmt.Fprintln(out, strings.TrimRight(raw.String(), "\n"))
				fmt.Fprintln(out, "-- processed --")
				fmt.Fprintln(out, strings.TrimRight(string(processed), "\n"))
				return nil
			}

			name := frameFileName(result)
			rawPath := filepath.Join(outDir, name+".json")
			processedPath := filepath.Join(outDir, name+cfg.Convert().OutputSuffix+format.Extension())
			if err := writeFile(rawPath, raw.Bytes()); err != nil {
				return err
			}
			if err := writeFile(processedPath, processed); err != nil {
				return err
			}
			logger.Info("Saved frame",
				zap.String("node_id", result.NodeID),
				zap.String("raw", rawPath),
				zap.String("processed", processedPath))
			return nil
		},
	}

	fetchCmd.Flags().String("out-dir", "", "Write <name>.json and <name>-parsed.<ext> into this directory instead of printing.")
	fetchCmd.Flags().StringP("format", "f", "", "Processed output format: json, json-indent or yaml. (Overrides config/env)")

	return fetchCmd
}

// frameFileName picks a filesystem-safe name for a fetched frame: the node
// name, then the file slug, then the node id.
func frameFileName(result *figma.FetchResult) string {
	candidates := []string{result.Link.Name, "frame-" + result.NodeID}
	if result.Node != nil {
		candidates = append([]string{result.Node.Base().Name}, candidates...)
	}
	for _, c := range candidates {
		if name := strings.Trim(unsafeNameChars.ReplaceAllString(c, "-"), "-."); name != "" {
			return name
		}
	}
	return "frame"
}

func jsonIndent(dst *bytes.Buffer, src []byte) error {
	// Sorted keys.
	codec := json.ConfigCompatibleWithStandardLibrary
	var v interface{}
	if err := codec.Unmarshal(src, &v); err != nil {
		return fmt.Errorf("failed to decode fetched document: %w", err)
	}
	out, err := codec.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format fetched document: %w", err)
	}
	dst.Write(out)
	return nil
}
