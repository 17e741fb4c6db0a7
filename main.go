package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Interrupt cancels an in-flight render between tiles
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCommand(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "raytracer",
		Short: "Stochastic sphere raytracer",
		Long: `Renders scenes of spheres with diffuse, metal and glass materials.

Built-in scenes are "three-spheres" and "random"; any .json scene file can be
rendered by path. Output is saved to output/<scene>/render_<timestamp>.png
unless --output is given.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRenderCommand(),
		newScenesCommand(),
		newServeCommand(),
	)
	return root
}
