// Package main is the tile pyramid build tool: it loads a map
// document, runs a terrain engine over it and writes the resulting
// tiles to disk and, optionally, a SQLite tile store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tellus3d/tellus/internal/config"
	"github.com/tellus3d/tellus/internal/engine/drivers/quad"
	"github.com/tellus3d/tellus/internal/engine/terrain"
	"github.com/tellus3d/tellus/internal/logger"
	"github.com/tellus3d/tellus/internal/mapmodel"
	"github.com/tellus3d/tellus/internal/source"
	"github.com/tellus3d/tellus/pkg/geo"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tilebuild [options] <map.yaml>")
		os.Exit(1)
	}

	if err := run(cfg, args[0]); err != nil {
		logger.Error("build failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, docPath string) error {
	m, err := mapmodel.LoadDocument(docPath)
	if err != nil {
		return err
	}
	defer m.Close()

	engine, err := terrain.CreateEngine(terrain.Options{
		Driver:          cfg.Terrain.Driver,
		TileSize:        cfg.Terrain.TileSize,
		HeightfieldSize: cfg.Terrain.HeightfieldSize,
		VerticalScale:   cfg.Terrain.VerticalScale,
		FirstLOD:        cfg.Terrain.FirstLOD,
	})
	if err != nil {
		return err
	}
	engine.Setup(m, terrain.Options{
		TileSize:        cfg.Terrain.TileSize,
		HeightfieldSize: cfg.Terrain.HeightfieldSize,
		VerticalScale:   cfg.Terrain.VerticalScale,
		FirstLOD:        cfg.Terrain.FirstLOD,
	})
	defer engine.Close()

	var cache *source.TileStore
	if cfg.Cache.Path != "" {
		cache, err = source.OpenTileStore(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer cache.Close()
		if err := cache.SetMetadata("format", "png"); err != nil {
			return err
		}
	}

	builder, err := quad.NewBuilder(engine)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Build.OutputDir, 0755); err != nil {
		return err
	}

	frame := m.Frame()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var built, skipped atomic.Int64
	for level := cfg.Build.MinLevel; level <= cfg.Build.MaxLevel; level++ {
		if err := buildLevel(ctx, cfg, builder, frame, level, cache, &built, &skipped); err != nil {
			return err
		}
		// Pump deferred tile notifications between levels.
		engine.Update()
		engine.Event()
	}

	logger.Info("build complete",
		zap.Int64("tiles", built.Load()),
		zap.Int64("empty", skipped.Load()),
		zap.Uint32("min_level", cfg.Build.MinLevel),
		zap.Uint32("max_level", cfg.Build.MaxLevel))
	return nil
}

// buildLevel fans one level's keys out over the configured worker
// count. Workers share one immutable frame, so no map locking is
// involved in the hot path.
func buildLevel(
	ctx context.Context,
	cfg *config.Config,
	builder *quad.Builder,
	frame *mapmodel.Frame,
	level uint32,
	cache *source.TileStore,
	built, skipped *atomic.Int64,
) error {
	profile := frame.Profile()
	wide, high := profile.NumTiles(level)

	keys := make(chan geo.TileKey)
	errs := make(chan error, 1)
	done := make(chan struct{})

	workers := cfg.Build.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	var abort sync.Once
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keys {
				if err := buildOne(ctx, cfg, builder, frame, key, cache, built, skipped); err != nil {
					select {
					case errs <- err:
					default:
					}
					// Stop the producer; the remaining keys must not
					// pile up against exited workers.
					abort.Do(func() { close(done) })
					return
				}
			}
		}()
	}

feed:
	for y := uint32(0); y < high; y++ {
		for x := uint32(0); x < wide; x++ {
			select {
			case keys <- geo.TileKey{Level: level, X: x, Y: y}:
			case <-done:
				break feed
			}
		}
	}
	close(keys)
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
	}

	logger.Debug("level done", zap.Uint32("level", level))
	return nil
}

func buildOne(
	ctx context.Context,
	cfg *config.Config,
	builder *quad.Builder,
	frame *mapmodel.Frame,
	key geo.TileKey,
	cache *source.TileStore,
	built, skipped *atomic.Int64,
) error {
	fetchCtx := ctx
	if cfg.Source.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, cfg.Source.FetchTimeout)
		defer cancel()
	}

	node, err := builder.BuildTile(frame, key, terrain.NewProgress(fetchCtx))
	if err != nil {
		return err
	}
	if node == nil || len(node.Model.ColorLayers) == 0 || node.Model.ColorLayers[0].Image == nil {
		skipped.Add(1)
		return nil
	}

	data, err := source.EncodeImage(node.Model.ColorLayers[0].Image)
	if err != nil {
		return fmt.Errorf("encoding tile %s: %w", key, err)
	}

	out := filepath.Join(cfg.Build.OutputDir, fmt.Sprintf("%d", key.Level), fmt.Sprintf("%d", key.X))
	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(out, fmt.Sprintf("%d.png.gz", key.Y)), data, 0644); err != nil {
		return err
	}

	if cache != nil {
		if err := cache.WriteTile(ctx, key, data); err != nil {
			return err
		}
	}

	built.Add(1)
	return nil
}
