package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-raytracer/web/server"
)

func newServeCommand() *cobra.Command {
	var (
		port      int
		scenesDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Long: `Starts the render server:

  GET /api/health
  GET /api/scenes
  GET /api/render?scene=&width=&height=&samples=&seed=   (image/png)
  GET /api/stream?scene=&width=&height=&samples=&seed=   (server-sent events)
  GET /api/inspect?scene=&width=&height=&x=&y=`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Printf("Visit http://localhost:%d/api/scenes to list scenes", port)
			return server.NewServer(port, scenesDir).Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to serve on")
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", defaultScenesDir, "directory scanned for .json scene files")
	return cmd
}
