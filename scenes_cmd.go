package main

import (
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

const defaultScenesDir = "scenes"

func newScenesCommand() *cobra.Command {
	var scenesDir string

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in and file scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenes(cmd.OutOrStdout(), scenesDir)
		},
	}
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", defaultScenesDir, "directory scanned for .json scene files")
	return cmd
}

func listScenes(w io.Writer, scenesDir string) error {
	response, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "NAME", "GROUP", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			t.Row(info.ID, info.DisplayName, group.Name, info.Description)
		}
	}

	_, err = lipgloss.Fprintln(w, t.String())
	return err
}
