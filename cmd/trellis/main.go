// Command trellis opens the node-graph editor on a generated demo graph.
package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/fatih/color"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/ecs"
	"github.com/spf13/cobra"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

var (
	configPath string
	nodeCount  int
	debugMode  bool
	logLevel   string
	scriptPath string
	seed       uint64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trellis",
		Short: "trellis: interactive node-graph editor",
		Long: brand.Sprint("trellis") + " interactive node-graph editor\n" +
			subtle.Sprint("Drag nodes, connect handles, Shift-drag to select, drag empty space to pan, scroll to zoom"),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEditor,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "trellis.toml", "path to the TOML config file")
	root.Flags().IntVarP(&nodeCount, "nodes", "n", 8, "number of demo nodes to generate")
	root.Flags().BoolVar(&debugMode, "debug", false, "log per-frame statistics")
	root.Flags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	root.Flags().StringVar(&scriptPath, "script", "", "JSON gesture script to replay")
	root.Flags().Uint64Var(&seed, "seed", 1, "random seed for the demo graph layout")

	root.AddCommand(newInitCmd())
	return root
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				bad.Printf("  %s already exists (use --force to overwrite)\n", configPath)
				return fmt.Errorf("%s already exists", configPath)
			}
			if err := trellis.DefaultConfig().Save(configPath); err != nil {
				bad.Printf("  failed to write %s: %v\n", configPath, err)
				return err
			}
			good.Printf("  wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := trellis.LoadConfig(configPath)
	if err != nil {
		bad.Printf("  %v\n", err)
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if debugMode {
		cfg.Debug.Enabled = true
		cfg.Log.Level = "debug"
	}
	logger := trellis.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	g, err := demoGraph(nodeCount, seed)
	if err != nil {
		bad.Printf("  build demo graph: %v\n", err)
		return err
	}

	editor := trellis.NewEditor(g, trellis.EditorOptionsFromConfig(cfg, logger))

	world := donburi.NewWorld()
	editor.SetEventStore(ecs.NewDonburiStore(world))
	ecs.EditorEventType.Subscribe(world, func(w donburi.World, ev trellis.EditorEvent) {
		logger.Debug("editor event",
			"type", ev.Type.String(),
			"id", ev.ID.String(),
			"tool", ev.Tool.String(),
			"selected", len(ev.Selection),
		)
	})
	editor.SetFrameHook(func() { events.ProcessAllEvents(world) })

	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			bad.Printf("  read script: %v\n", err)
			return err
		}
		runner, err := trellis.LoadScript(data)
		if err != nil {
			bad.Printf("  %v\n", err)
			return err
		}
		editor.SetScriptRunner(runner)
	}

	fmt.Printf("%s %s\n", brand.Sprint("trellis"),
		subtle.Sprintf("%d nodes, %d edges, config %s", g.NodeCount(), g.EdgeCount(), configPath))

	ebiten.SetTPS(cfg.Window.TPS)
	if err := trellis.Run(cfg.Window.Title, editor); err != nil {
		bad.Printf("  %v\n", err)
		return err
	}
	return nil
}

// demoGraph lays n nodes out on a jittered grid, each with one input and one
// output handle, and chains every node to the next.
func demoGraph(n int, seed uint64) (*trellis.Graph, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := trellis.NewGraph()
	const cols = 4

	var prevOut trellis.ElementID
	for i := range n {
		col, row := i%cols, i/cols
		node, err := g.AddNode(trellis.NodeOptions{
			Position: trellis.Vec2{
				X: 80 + float64(col)*280 + rng.Float64()*40,
				Y: 80 + float64(row)*180 + rng.Float64()*40,
			},
			Size: trellis.Vec2{X: 180, Y: 90},
		})
		if err != nil {
			return nil, err
		}
		in, err := g.AddHandle(node.ID, trellis.HandleOptions{Kind: trellis.HandleInput})
		if err != nil {
			return nil, err
		}
		out, err := g.AddHandle(node.ID, trellis.HandleOptions{Kind: trellis.HandleOutput})
		if err != nil {
			return nil, err
		}
		if !prevOut.IsZero() {
			if _, err := g.AddEdge(trellis.EdgeOptions{
				Source: trellis.EdgeEnd{Handle: prevOut},
				Target: trellis.EdgeEnd{Handle: in.ID},
			}); err != nil {
				return nil, err
			}
		}
		prevOut = out.ID
	}
	return g, nil
}
