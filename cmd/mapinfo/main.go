// mapinfo is a CLI utility for inspecting map documents and tile
// stores.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tellus3d/tellus/internal/mapmodel"
	"github.com/tellus3d/tellus/internal/source"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "map":
		cmdMap(args)
	case "store":
		cmdStore(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mapinfo - map document and tile store inspector

Usage:
  mapinfo <command> [options]

Commands:
  map <map.yaml>     Show map document information
  store <tiles.db>   Show tile store information

Examples:
  mapinfo map world.yaml
  mapinfo store imagery.db`)
}

func cmdMap(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapinfo map <map.yaml>")
		os.Exit(1)
	}

	m, err := mapmodel.LoadDocument(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.Close()

	p := m.Profile()
	ext := p.Extent()
	fmt.Printf("Profile:    %s\n", p.SRS())
	fmt.Printf("Geocentric: %v\n", m.IsGeocentric())
	fmt.Printf("Extent:     [%g, %g] - [%g, %g]\n", ext.XMin, ext.YMin, ext.XMax, ext.YMax)
	fmt.Printf("Root tiles: %d\n", len(p.RootKeys()))

	images := m.ImageLayers()
	fmt.Printf("\nImage layers (%d):\n", len(images))
	for i, l := range images {
		fmt.Printf("  %2d. %-20s opacity=%.2f visible=%v\n", i, l.Name(), l.Opacity(), l.Visible())
	}

	elevations := m.ElevationLayers()
	fmt.Printf("\nElevation layers (%d):\n", len(elevations))
	for i, l := range elevations {
		fmt.Printf("  %2d. %-20s offset=%.1f\n", i, l.Name(), l.VerticalOffset())
	}
}

func cmdStore(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mapinfo store <tiles.db>")
		os.Exit(1)
	}

	store, err := source.OpenTileStore(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	count, err := store.TileCount(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Store:  %s\n", store.Path())
	fmt.Printf("Tiles:  %d\n", count)

	for _, key := range []string{"name", "format", "description"} {
		value, err := store.Metadata(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if value != "" {
			fmt.Printf("%-7s %s\n", key+":", value)
		}
	}
}
