package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recera/vtc/cmd/vtc/internal/config"
	"github.com/recera/vtc/cmd/vtc/internal/ui"
	"github.com/recera/vtc/pkg/compiler/validate"
)

func newCheckCommand() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Parse, transform and validate templates",
		Long: `Parses and transforms each template, then checks the resulting tree:
source positions, parent containment, if branch shape, node aliasing and
codegen node shape. Without arguments every template selected by vtc.yaml is
checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			paths := args
			if len(paths) == 0 {
				if paths, err = cfg.Sources(cwd); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			opts := cfg.CompilerOptions()
			failed := 0
			for _, path := range paths {
				root, source, err := loadTree(cmd, path, opts, true)
				if err != nil {
					failed++
					fmt.Fprintln(out, ui.Failure("%s: %v", path, err))
					continue
				}

				diags := validate.Tree(root, source)
				if len(diags) == 0 {
					fmt.Fprintln(out, ui.Success("%s", path))
					continue
				}
				failed++
				fmt.Fprintln(out, ui.Failure("%s: %d problems", path, len(diags)))
				for _, d := range diags {
					fmt.Fprintln(out, "    "+d.Error())
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(paths))
			}
			fmt.Fprintln(out, ui.Muted(fmt.Sprintf("%d templates ok", len(paths))))
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", ".", "Project directory holding vtc.yaml")

	return cmd
}
