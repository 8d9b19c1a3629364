package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/recera/vtc/cmd/vtc/internal/config"
	"github.com/recera/vtc/cmd/vtc/internal/ui"
	"github.com/recera/vtc/internal/cache"
	"github.com/recera/vtc/pkg/compiler"
)

func newCompileCommand() *cobra.Command {
	var (
		cwd      string
		outDir   string
		jobs     int
		watch    bool
		noCache  bool
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile templates to render functions",
		Long: `Compiles templates to JavaScript render functions written under the
configured output directory. Without arguments every template selected by
vtc.yaml is compiled. With --watch the templates are recompiled as they change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags override vtc.yaml
			if cmd.Flags().Changed("out") {
				cfg.OutDir = outDir
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Jobs = jobs
			}
			if cmd.Flags().Changed("validate") {
				cfg.ValidateTree = validate
			}
			if noCache {
				cfg.Cache.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			b, err := newBuilder(cfg, cwd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer b.Close()

			paths := args
			if len(paths) == 0 {
				if paths, err = cfg.Sources(cwd); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := b.build(ctx, paths); err != nil && !watch {
				return err
			}
			if !watch {
				return nil
			}
			return b.watch(ctx)
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", ".", "Project directory holding vtc.yaml")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (overrides outDir)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Maximum concurrent compiles, 0 for no limit")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile templates when they change")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the compile cache")
	cmd.Flags().BoolVar(&validate, "validate", false, "Check tree invariants before generating code")

	return cmd
}

// builder compiles templates to files, consulting the artifact cache
type builder struct {
	cfg         *config.Config
	root        string
	opts        compiler.Options
	fingerprint string
	cache       *cache.Cache
	out         io.Writer
}

func newBuilder(cfg *config.Config, root string, out io.Writer) (*builder, error) {
	b := &builder{
		cfg:         cfg,
		root:        root,
		opts:        cfg.CompilerOptions(),
		fingerprint: cfg.Fingerprint(),
		out:         out,
	}
	if cfg.Cache != nil && cfg.Cache.Enabled {
		cc, err := cfg.Cache.Config()
		if err != nil {
			return nil, err
		}
		if b.cache, err = cache.New(cc); err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
	}
	return b, nil
}

func (b *builder) Close() error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Close()
}

// build compiles paths, taking unchanged templates from the cache
func (b *builder) build(ctx context.Context, paths []string) error {
	start := time.Now()

	var misses []string
	keys := make(map[string]string, len(paths))
	hits := 0
	for _, path := range paths {
		if b.cache == nil {
			misses = append(misses, path)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		key := cache.Key(string(data), b.fingerprint)
		keys[path] = key
		if artifact, ok := b.cache.GetArtifact(key); ok {
			if err := b.write(path, artifact.Code); err != nil {
				return err
			}
			hits++
			continue
		}
		misses = append(misses, path)
	}

	results, err := compiler.CompileFiles(ctx, misses, b.opts, b.cfg.Jobs)
	if err != nil {
		fmt.Fprintln(b.out, ui.Failure("%v", err))
		return err
	}

	for _, res := range results {
		if err := b.write(res.Filename, res.Code); err != nil {
			return err
		}
		if key, ok := keys[res.Filename]; ok {
			artifact := &cache.Artifact{Code: res.Code, Helpers: res.Helpers}
			if err := b.cache.PutArtifact(key, res.Filename, artifact); err != nil {
				log.Printf("⚠️  Failed to cache %s: %v", res.Filename, err)
			}
		}
	}

	fmt.Fprintln(b.out, ui.Success("Compiled %d templates (%d cached) in %v",
		len(paths), hits, time.Since(start).Round(time.Millisecond)))
	return nil
}

func (b *builder) write(source, code string) error {
	path := b.cfg.OutputPath(b.root, source)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// watch recompiles templates as they change until ctx is done
func (b *builder) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := b.addWatches(watcher, b.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.root, err)
	}
	log.Printf("👀 Watching %s for template changes", b.root)

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pending []fsnotify.Event
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := b.addWatches(watcher, event.Name); err != nil {
						log.Printf("⚠️  Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !b.isTemplate(event.Name) {
				continue
			}
			pending = append(pending, event)
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			events := pending
			pending = nil
			b.handleChanges(ctx, events)
		}
	}
}

func (b *builder) addWatches(watcher *fsnotify.Watcher, dir string) error {
	outDir := filepath.Clean(filepath.Join(b.root, b.cfg.OutDir))
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && config.SkipDir(d.Name()) || (b.cfg.OutDir != "" && filepath.Clean(path) == outDir) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (b *builder) isTemplate(path string) bool {
	rel, err := filepath.Rel(b.root, path)
	if err != nil {
		return false
	}
	return b.cfg.Matches(rel)
}

func (b *builder) handleChanges(ctx context.Context, events []fsnotify.Event) {
	var changed []string
	for _, event := range events {
		if slices.Contains(changed, event.Name) {
			continue
		}
		if b.cache != nil {
			if _, err := b.cache.InvalidateSource(event.Name); err != nil {
				log.Printf("⚠️  Failed to invalidate cache for %s: %v", event.Name, err)
			}
		}
		if _, err := os.Stat(event.Name); errors.Is(err, os.ErrNotExist) {
			out := b.cfg.OutputPath(b.root, event.Name)
			if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Printf("⚠️  Failed to remove %s: %v", out, err)
			}
			continue
		}
		changed = append(changed, event.Name)
	}
	if len(changed) == 0 {
		return
	}

	log.Printf("🔄 Recompiling %d changed templates", len(changed))
	if err := b.build(ctx, changed); err != nil {
		log.Printf("❌ Build failed: %v", err)
	}
}
