package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/worldcanvas/internal/ui"
	"github.com/ha1tch/worldcanvas/pkg/worldfile"
)

func dotCmd(e *env) *cobra.Command {
	var (
		collectionID string
		title        string
		output       string
	)
	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Generate Graphviz DOT for a map or graph",
		Example: `  worldcanvas dot eldoria.json -c g-court | neato -n -Tsvg -o court.svg
  worldcanvas dot eldoria.json -c m-continent -o continent.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			c, err := collection(w, collectionID)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, []byte(worldfile.GenerateDOT(c, title)))
		},
	}
	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Map or graph id")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Graph title (default: collection name)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func pngCmd(e *env) *cobra.Command {
	var (
		collectionID string
		output       string
		noBackground bool
	)
	opts := worldfile.DefaultPNGOptions()

	cmd := &cobra.Command{
		Use:   "png <file>",
		Short: "Render a snapshot of a map or graph as PNG",
		Example: `  worldcanvas png eldoria.json -c m-continent -o continent.png
  worldcanvas png eldoria.wcz -c g-court --width 1600 --height 1200 -o court.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("missing --output")
			}
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			c, err := collection(w, collectionID)
			if err != nil {
				return err
			}

			opts.Background = !noBackground
			var buf bytes.Buffer
			if err := worldfile.RenderPNG(c, &buf, opts); err != nil {
				return err
			}
			if err := writeOutput(cmd, output, buf.Bytes()); err != nil {
				return err
			}
			e.logger.Debug("rendered png", "collection", c.ID, "width", opts.Width, "height", opts.Height)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %d nodes, %d edges -> %s\n",
				ui.StatusIcon(true), c.Name, len(c.Nodes), len(c.Edges), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Map or graph id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (- for stdout)")
	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Title drawn above the snapshot")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "Image width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "Image height")
	cmd.Flags().IntVar(&opts.NodeRadius, "node-radius", opts.NodeRadius, "Node radius")
	cmd.Flags().IntVar(&opts.FontSize, "font-size", opts.FontSize, "Label font size")
	cmd.Flags().BoolVar(&noBackground, "no-background", false, "Skip map background images")
	return cmd
}

func svgCmd(e *env) *cobra.Command {
	var (
		collectionID string
		output       string
		noBackground bool
	)
	opts := worldfile.DefaultSVGOptions()

	cmd := &cobra.Command{
		Use:   "svg <file>",
		Short: "Render a map or graph as SVG",
		Example: `  worldcanvas svg eldoria.json -c g-court > court.svg
  worldcanvas svg eldoria.wcz -c m-continent --no-background -o continent.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			c, err := collection(w, collectionID)
			if err != nil {
				return err
			}

			opts.Background = !noBackground
			var buf bytes.Buffer
			if err := worldfile.RenderSVG(c, &buf, opts); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Map or graph id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Title drawn above the diagram")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "Canvas width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "Canvas height")
	cmd.Flags().IntVar(&opts.NodeRadius, "node-radius", opts.NodeRadius, "Node radius")
	cmd.Flags().IntVar(&opts.FontSize, "font-size", opts.FontSize, "Label font size")
	cmd.Flags().BoolVar(&noBackground, "no-background", false, "Skip map background images")
	return cmd
}
