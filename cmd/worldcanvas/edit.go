package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/worldcanvas/internal/ui"
	"github.com/ha1tch/worldcanvas/pkg/config"
	"github.com/ha1tch/worldcanvas/pkg/crop"
	"github.com/ha1tch/worldcanvas/pkg/geom"
	"github.com/ha1tch/worldcanvas/pkg/world"
	"github.com/ha1tch/worldcanvas/pkg/worldfile"
)

func arrangeCmd(e *env) *cobra.Command {
	var (
		collectionID string
		output       string
		centerX      float64
		centerY      float64
		radius       float64
		layout       string
	)
	layered := worldfile.DefaultLayeredOptions()

	cmd := &cobra.Command{
		Use:   "arrange <file>",
		Short: "Place the nodes of a map or graph on a circle or in layers",
		Example: `  worldcanvas arrange eldoria.json -c g-court
  worldcanvas arrange eldoria.json -c g-court --radius 300 -o arranged.json
  worldcanvas arrange eldoria.json -c g-court --layout layered --layer-gap 120`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			if layout != "circle" && layout != "layered" {
				return fmt.Errorf("unknown layout %q (want circle or layered)", layout)
			}
			c, err := collection(w, collectionID)
			if err != nil {
				return err
			}

			g, err := world.NewGraph(c, world.WithOnChange(func(next world.Collection) {
				w.Replace(next)
			}))
			if err != nil {
				return err
			}
			var moved int
			if layout == "layered" {
				moved = worldfile.ArrangeLayered(g, layered)
			} else {
				moved = worldfile.Arrange(g, geom.Pt(centerX, centerY), radius)
			}

			if output == "" {
				output = args[0]
			}
			if err := e.save(output, w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s arranged %s in %s -> %s\n",
				ui.StatusIcon(true), plural(moved, "node"), c.Name, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Map or graph id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: overwrite input)")
	cmd.Flags().Float64Var(&centerX, "cx", worldfile.DefaultArrangeCenter.X, "Circle centre x")
	cmd.Flags().Float64Var(&centerY, "cy", worldfile.DefaultArrangeCenter.Y, "Circle centre y")
	cmd.Flags().Float64Var(&radius, "radius", worldfile.DefaultArrangeRadius, "Circle radius")
	cmd.Flags().StringVar(&layout, "layout", "circle", "Layout: circle or layered")
	cmd.Flags().Float64Var(&layered.LayerGap, "layer-gap", layered.LayerGap, "Distance between layers")
	cmd.Flags().Float64Var(&layered.NodeGap, "node-gap", layered.NodeGap, "Distance between nodes in a layer")
	return cmd
}

func cropCmd(e *env) *cobra.Command {
	var (
		mapID  string
		image  string
		preset string
		width  int
		height int
		swap   bool
		scale  float64
		panX   float64
		panY   float64
		output string
		raster string
	)
	cmd := &cobra.Command{
		Use:   "crop <file>",
		Short: "Crop an image into a map background",
		Long: `Crop an image into a map background.

The frame starts at the image's natural size (shrunk to fit 1200px) or at
a ratio preset. Pan is given in pixels of the 400px wide editing viewport,
as dragged in the interactive editor.`,
		Example: `  worldcanvas crop eldoria.json --map m-continent --image continent.webp
  worldcanvas crop eldoria.json --map m-continent --image scan.png --preset 16:9 --scale 1.5 --pan-x -40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if image == "" {
				return errors.New("missing --image")
			}
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			m, ok := w.Collection(mapID)
			if !ok || m.Type != world.TypeMap {
				return fmt.Errorf("no map %q", mapID)
			}

			f, err := os.Open(image)
			if err != nil {
				return err
			}
			defer f.Close()
			decoded := <-crop.DecodeAsync(cmd.Context(), f)
			if decoded.Err != nil {
				return fmt.Errorf("%s: %w", image, decoded.Err)
			}
			e.logger.Debug("decoded image", "path", image, "format", decoded.Format)

			ed := crop.NewEditor(crop.DefaultFrame(), e.cfg.CropOptions(e.logger))
			ed.Load(decoded.Image)
			if err := ed.SetPreset(crop.Preset(preset)); err != nil {
				return err
			}
			if width > 0 || height > 0 {
				fr := ed.Frame()
				if width <= 0 {
					width = fr.OutputWidth
				}
				if height <= 0 {
					height = fr.OutputHeight
				}
				ed.SetSize(width, height)
			}
			if swap {
				ed.Swap()
			}
			ed.SetScale(scale)
			if panX != 0 || panY != 0 {
				ed.PointerDown(geom.Pt(0, 0))
				ed.PointerMove(geom.Pt(panX, panY))
				ed.PointerUp()
			}

			r, err := ed.Confirm()
			if err != nil {
				return err
			}
			if raster != "" {
				if err := os.WriteFile(raster, r.Data, 0o644); err != nil {
					return err
				}
			}
			w.SetBackground(mapID, r.DataURL())

			if output == "" {
				output = args[0]
			}
			if err := e.save(output, w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s background %dx%d %s (%d bytes) -> %s\n",
				ui.StatusIcon(true), m.Name, r.Width, r.Height, r.Format, len(r.Data), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&mapID, "map", "", "Map id")
	cmd.Flags().StringVar(&image, "image", "", "Source image (png, jpeg, gif, webp, bmp, tiff)")
	cmd.Flags().StringVar(&preset, "preset", string(crop.PresetOriginal), "Frame preset: original, 1:1, 4:3, 16:9")
	cmd.Flags().IntVar(&width, "width", 0, "Custom output width")
	cmd.Flags().IntVar(&height, "height", 0, "Custom output height")
	cmd.Flags().BoolVar(&swap, "swap", false, "Swap output width and height")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Zoom, 0.1 to 4")
	cmd.Flags().Float64Var(&panX, "pan-x", 0, "Horizontal pan in viewport pixels")
	cmd.Flags().Float64Var(&panY, "pan-y", 0, "Vertical pan in viewport pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output world (default: overwrite input)")
	cmd.Flags().StringVar(&raster, "raster", "", "Also write the encoded raster to this file")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

func configCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), e.configPath)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.Encode(cmd.OutOrStdout(), e.cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := os.Stat(e.configPath); err == nil {
					return fmt.Errorf("%s exists", e.configPath)
				}
				if err := config.Save(e.configPath, config.Default()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", ui.StatusIcon(true), e.configPath)
				return nil
			},
		},
	)
	return cmd
}
