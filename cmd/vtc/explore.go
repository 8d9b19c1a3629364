package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/vtc/cmd/vtc/internal/config"
	"github.com/recera/vtc/cmd/vtc/internal/ui"
)

func newExploreCommand() *cobra.Command {
	var (
		cwd         string
		transformed bool
	)

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Browse a template's syntax tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			root, _, err := loadTree(cmd, args[0], cfg.CompilerOptions(), transformed)
			if err != nil {
				return err
			}

			p := tea.NewProgram(ui.NewExplorer(args[0], root),
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run explorer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", ".", "Project directory holding vtc.yaml")
	cmd.Flags().BoolVarP(&transformed, "transform", "t", true, "Run the transform passes before exploring")

	return cmd
}
