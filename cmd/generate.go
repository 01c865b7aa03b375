// File: cmd/generate.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/observability"
	"github.com/xkilldash9x/framesmith/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [link]",
		Short: "Generates component code for a design frame",
		Long: `Fetches the linked frame, converts it to a style tree, renders the prompt
template and streams the model's completion to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			applyGenerateFlags(cmd, cfg)

			link, err := figma.ParseLink(args[0])
			if err != nil {
				return err
			}

			components, err := newFactory().Create(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			result, err := components.Pipeline.Run(ctx, link, pipeline.Hooks{
				OnProgress: func(_ pipeline.Stage, message string) {
					fmt.Fprintln(stderr, message)
				},
				OnDelta: func(delta string) {
					io.WriteString(stdout, delta)
				},
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Generation aborted", zap.String("link", link.String()))
				}
				return err
			}
			fmt.Fprintln(stdout)

			if showPrompt, _ := cmd.Flags().GetBool("show-prompt"); showPrompt {
				fmt.Fprintln(stderr, "-- prompt --")
				fmt.Fprintln(stderr, result.Prompt)
			}

			if output, _ := cmd.Flags().GetString("output"); output != "" {
				if err := writeFile(output, []byte(result.Generation.Text)); err != nil {
					return err
				}
				logger.Info("Saved generated code", zap.String("output", output))
			}
			return nil
		},
	}

	generateCmd.Flags().StringP("output", "o", "", "Also write the generated code to this file.")
	generateCmd.Flags().Bool("show-prompt", false, "Print the rendered prompt to stderr after generating.")
	generateCmd.Flags().StringP("template", "t", "", "Prompt template id. (Overrides config/env)")
	generateCmd.Flags().StringP("model", "m", "", "Model name. (Overrides config/env)")

	return generateCmd
}

// applyGenerateFlags copies explicitly set flags onto the configuration.
func applyGenerateFlags(cmd *cobra.Command, cfg config.Interface) {
	if cmd.Flags().Changed("template") {
		id, _ := cmd.Flags().GetString("template")
		cfg.SetPromptTemplateID(id)
	}
	if cmd.Flags().Changed("model") {
		model, _ := cmd.Flags().GetString("model")
		cfg.SetLLMModel(model)
	}
}
