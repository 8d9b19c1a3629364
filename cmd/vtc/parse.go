package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/vtc/cmd/vtc/internal/config"
	"github.com/recera/vtc/cmd/vtc/internal/ui"
	"github.com/recera/vtc/pkg/compiler"
	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/astyaml"
	"github.com/recera/vtc/pkg/compiler/parser"
	"github.com/recera/vtc/pkg/compiler/transform"
)

func newParseCommand() *cobra.Command {
	var (
		cwd         string
		format      string
		transformed bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Print a template's syntax tree",
		Long: `Parses a template and prints its syntax tree as an indented tree, YAML or
JSON. With --transform the tree is printed after the transform passes, with
codegen nodes attached to elements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			root, _, err := loadTree(cmd, args[0], cfg.CompilerOptions(), transformed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "tree":
				_, err = io.WriteString(out, ui.RenderTree(root))
			case "yaml":
				err = writeEncoded(out, root, astyaml.Encode)
			case "json":
				err = writeEncoded(out, root, astyaml.EncodeJSON)
			default:
				return fmt.Errorf("unknown format %q (want tree, yaml or json)", format)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", ".", "Project directory holding vtc.yaml")
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree, yaml or json")
	cmd.Flags().BoolVarP(&transformed, "transform", "t", false, "Run the transform passes before printing")

	return cmd
}

func writeEncoded(w io.Writer, root *ast.Root, encode func(*ast.Root) ([]byte, error)) error {
	data, err := encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// readTemplate reads path, or standard input when path is "-"
func readTemplate(cmd *cobra.Command, path string) (source, name string, err error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), path, nil
}

// loadTree parses the template at path and optionally transforms it
func loadTree(cmd *cobra.Command, path string, opts compiler.Options, transformed bool) (*ast.Root, string, error) {
	source, name, err := readTemplate(cmd, path)
	if err != nil {
		return nil, "", err
	}

	opts.Parser.Filename = name
	root, err := parser.Parse(source, opts.Parser)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse template: %w", err)
	}
	if transformed {
		if _, err := transform.Transform(root, opts.Transform); err != nil {
			return nil, "", fmt.Errorf("failed to transform template: %w", err)
		}
	}
	return root, source, nil
}
