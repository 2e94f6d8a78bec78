package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ha1tch/worldcanvas/internal/ui"
	"github.com/ha1tch/worldcanvas/pkg/world"
)

func newCmd(e *env) *cobra.Command {
	var (
		name   string
		maps   []string
		graphs []string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create a world document with empty maps and graphs",
		Example: `  worldcanvas new eldoria.json --name Eldoria --map Continent --graph Court
  worldcanvas new eldoria.wcz --map Continent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}

			w := &world.World{ID: world.UUID("w"), Name: name}
			for _, m := range maps {
				w.AddMap(m, e.cfg.Editor.MapWidth, e.cfg.Editor.MapHeight, nil)
			}
			for _, g := range graphs {
				w.AddGraph(g, nil)
			}
			if err := e.save(path, w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %s (%d maps, %d graphs)\n",
				ui.StatusIcon(true), path, len(w.Maps), len(w.Graphs))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Untitled world", "World name")
	cmd.Flags().StringArrayVar(&maps, "map", nil, "Add a map with this name (repeatable)")
	cmd.Flags().StringArrayVar(&graphs, "graph", nil, "Add a graph with this name (repeatable)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func infoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "List the maps and graphs of a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "  %s %s\n\n", ui.Brand.Sprint(w.Name), ui.Subtle.Sprintf("(%s)", w.ID))

			var rows [][]string
			for _, c := range w.Collections() {
				size := "-"
				if c.Type == world.TypeMap {
					size = fmt.Sprintf("%dx%d", c.Width, c.Height)
				}
				background := ""
				if c.Background != "" {
					background = "yes"
				}
				rows = append(rows, []string{
					c.ID, string(c.Type), c.Name,
					strconv.Itoa(len(c.Nodes)), strconv.Itoa(len(c.Edges)),
					size, background,
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, ui.Subtle.Sprint("  no maps or graphs"))
				return nil
			}
			ui.Table(out, []string{"ID", "TYPE", "NAME", "NODES", "EDGES", "SIZE", "BACKGROUND"}, rows)
			return nil
		},
	}
}

func validateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check documents for dangling or self-referencing edges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				_, err := e.load(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", ui.StatusIcon(false), path, err)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", ui.StatusIcon(true), path)
			}
			if failed > 0 {
				return errors.New(plural(failed, "invalid document"))
			}
			return nil
		},
	}
}

func convertCmd(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: "Convert between formats (json, yaml, wcz)",
		Example: `  worldcanvas convert eldoria.json -o eldoria.yaml
  worldcanvas convert eldoria.json -o eldoria.wcz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("missing --output")
			}
			w, err := e.load(args[0])
			if err != nil {
				return err
			}
			if err := e.save(output, w); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", ui.StatusIcon(true), args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; format from extension")
	return cmd
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
