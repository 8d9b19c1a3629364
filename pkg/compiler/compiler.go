// Package compiler ties the template pipeline together: parse, transform,
// optionally validate, and generate a render function.
package compiler

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/codegen"
	"github.com/recera/vtc/pkg/compiler/parser"
	"github.com/recera/vtc/pkg/compiler/transform"
	"github.com/recera/vtc/pkg/compiler/validate"
)

// Options configures every stage of a compile
type Options struct {
	Parser    parser.Options
	Transform transform.Options
	Codegen   codegen.Options

	// Validate checks the transformed tree's structural invariants before
	// generating code
	Validate bool
}

// Result is one compiled template
type Result struct {
	Filename string
	AST      *ast.Root
	Code     string
	Helpers  []string
	Mappings []codegen.Mapping
}

// Compile compiles a single template. A compile owns its tree; separate
// calls share nothing and may run concurrently.
func Compile(source string, opts Options) (*Result, error) {
	root, err := parser.Parse(source, opts.Parser)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	tr, err := transform.Transform(root, opts.Transform)
	if err != nil {
		return nil, fmt.Errorf("failed to transform template: %w", err)
	}

	if opts.Validate {
		if err := validate.Err(validate.Tree(root, source)); err != nil {
			return nil, fmt.Errorf("invalid template tree: %w", err)
		}
	}

	cg := opts.Codegen
	cg.Imports = append(cg.Imports[:len(cg.Imports):len(cg.Imports)], tr.Helpers...)
	cg.Hoists = tr.Hoists
	gen, err := codegen.Generate(root, cg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	return &Result{
		Filename: opts.Parser.Filename,
		AST:      root,
		Code:     gen.Code,
		Helpers:  gen.Helpers,
		Mappings: gen.Mappings,
	}, nil
}

// CompileFiles compiles paths concurrently, at most jobs at a time (no
// limit when jobs <= 0). Results are in path order. The first failure
// cancels the remaining compiles.
func CompileFiles(ctx context.Context, paths []string, opts Options, jobs int) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			fileOpts := opts
			fileOpts.Parser.Filename = path
			res, err := Compile(string(data), fileOpts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
