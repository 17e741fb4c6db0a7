package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/publish"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// stdoutOutput writes a PPM image to stdout instead of a file
const stdoutOutput = "-"

type renderOptions struct {
	scene     string
	width     int
	height    int
	samples   int
	seed      int64
	tileSize  int
	workers   int
	output    string
	thumbnail uint
	publish   bool
	envFile   string
}

func newRenderCommand() *cobra.Command {
	defaults := renderer.DefaultConfig()
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Example: `  raytracer render --scene random --samples 10
  raytracer render --scene scenes/bubble.json --output bubble.jpg --thumbnail 128
  raytracer render --width 200 --height 100 --output - > image.ppm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newStyledLogger(cmd.ErrOrStderr())
			return runRender(cmd.Context(), opts, cmd.OutOrStdout(), logger, time.Now())
		},
	}

	bindRenderFlags(cmd.Flags(), &opts, defaults)
	return cmd
}

func bindRenderFlags(flags *pflag.FlagSet, opts *renderOptions, defaults renderer.Config) {
	flags.StringVarP(&opts.scene, "scene", "s", "three-spheres", "built-in scene ID or path to a .json scene file")
	flags.IntVar(&opts.width, "width", 0, "image width in pixels (0 = scene default)")
	flags.IntVar(&opts.height, "height", 0, "image height in pixels (0 = scene default)")
	flags.IntVarP(&opts.samples, "samples", "n", 0, "samples per pixel (0 = scene default)")
	flags.Int64Var(&opts.seed, "seed", defaults.Seed, "random seed for scene generation and sampling")
	flags.IntVar(&opts.tileSize, "tile-size", defaults.TileSize, "tile edge in pixels")
	flags.IntVarP(&opts.workers, "workers", "w", defaults.NumWorkers, "parallel workers (0 = CPU count)")
	flags.StringVarP(&opts.output, "output", "o", "", `output file; the extension picks the format, "-" writes PPM to stdout`)
	flags.UintVar(&opts.thumbnail, "thumbnail", 0, "also save a thumbnail no larger than this many pixels")
	flags.BoolVar(&opts.publish, "publish", false, "upload the render to S3 (configured via RT_S3_* variables)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "file with RT_S3_* variables, loaded if present")
}

func runRender(ctx context.Context, opts renderOptions, stdout io.Writer, logger core.Logger, now time.Time) error {
	// Publish settings are checked before rendering
	var publisher *publish.Publisher
	if opts.publish {
		cfg, err := publish.LoadConfig(opts.envFile)
		if err != nil {
			return err
		}
		if publisher, err = publish.NewPublisher(cfg); err != nil {
			return err
		}
	}

	s, err := scene.Get(opts.scene, scene.Options{
		Width:   opts.width,
		Height:  opts.height,
		Samples: opts.samples,
		Seed:    opts.seed,
	})
	if err != nil {
		return err
	}

	config := renderer.Config{TileSize: opts.tileSize, NumWorkers: opts.workers, Seed: opts.seed}
	rt, err := renderer.NewRaytracer(s, config, logger)
	if err != nil {
		return err
	}

	logger.Printf("Scene %s: %d spheres, max depth %d", opts.scene, s.GetPrimitiveCount(), s.MaxDepth)
	lastDecile := 0
	pixels, stats, err := rt.Render(ctx, func(p renderer.TileProgress) {
		if decile := p.TileNumber * 10 / p.TotalTiles; decile > lastDecile {
			lastDecile = decile
			logger.Printf("%3d%% (%d/%d tiles)", decile*10, p.TileNumber, p.TotalTiles)
		}
	})
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	logger.Printf("%.1f samples/pixel over %d pixels on %d workers", stats.AverageSamples, stats.TotalPixels, stats.Workers)

	img, err := output.ToImage(pixels, s.Width, s.Height)
	if err != nil {
		return err
	}

	path, format := opts.output, "ppm"
	if path == stdoutOutput {
		if err := output.WritePPM(stdout, pixels, s.Width, s.Height); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	} else {
		if path == "" {
			path = defaultOutputPath(opts.scene, now)
		}
		format = strings.TrimPrefix(filepath.Ext(path), ".")
		if err := output.Save(path, img); err != nil {
			return err
		}
		logger.Printf("Saved %s", path)
	}

	if opts.thumbnail > 0 && path != stdoutOutput {
		thumbPath := thumbnailPath(path)
		if err := output.Save(thumbPath, output.Thumbnail(img, opts.thumbnail)); err != nil {
			return err
		}
		logger.Printf("Saved %s", thumbPath)
	}

	if publisher != nil {
		var buf bytes.Buffer
		if err := output.Encode(&buf, img, format); err != nil {
			return err
		}
		name := objectName(opts.scene, now, format)
		location, err := publisher.Upload(ctx, name, buf.Bytes(), output.ContentType(format))
		if err != nil {
			return err
		}
		logger.Printf("Published %s", location)
	}

	return nil
}

// sceneName turns a scene ID or file path into a directory-safe name
func sceneName(id string) string {
	base := filepath.Base(id)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneID string, now time.Time) string {
	return filepath.Join("output", sceneName(sceneID), fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

// thumbnailPath inserts "_thumb" before the extension
func thumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}

// objectName is the uploaded object's name below the configured prefix
func objectName(sceneID string, now time.Time, format string) string {
	return fmt.Sprintf("%s/render_%s.%s", sceneName(sceneID), now.Format("20060102_150405"), format)
}
