// Command badges opens a window showing one of the four animated achievement badges. The number
// keys 1 to 4 switch between them and the pointer light follows the cursor.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine"
	"github.com/Carmen-Shannon/oxy-badges/engine/config"
	"github.com/Carmen-Shannon/oxy-badges/engine/profiler"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/window"
	"github.com/Carmen-Shannon/oxy-badges/engine/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "badges: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	badgeName := flag.String("badge", "", "badge shown first (votes, posters, likes, commentators)")
	nativePath := flag.String("native", "", "weaver module: a shared library path or \"builtin:\"")
	profile := flag.Bool("profile", false, "log frame statistics every second")
	validate := flag.Bool("validate-shaders", false, "compile material shaders with naga before use")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *badgeName != "" {
		cfg.Badge = *badgeName
	}
	if *nativePath != "" {
		cfg.Native = *nativePath
	}
	if *profile {
		cfg.Profile = true
	}
	if *validate {
		cfg.ValidateShaders = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Logger ──────────────────────────────────────────────────────────
	level, _ := cfg.Level()
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// ── Window ──────────────────────────────────────────────────────────
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	// ── Router ──────────────────────────────────────────────────────────
	routerOptions := []worker.RouterBuilderOption{
		worker.WithFrameRate(cfg.FPS),
		worker.WithRendererOptions(renderer.WithPresentMode(cfg.PresentMode())),
		worker.WithSceneOptions(cfg.SceneOptions()...),
	}
	if cfg.Profile {
		routerOptions = append(routerOptions, worker.WithProfiler(profiler.NewProfiler()))
	}

	// ── Host ────────────────────────────────────────────────────────────
	host, err := engine.NewHost(win,
		engine.WithBadge(cfg.Badge),
		engine.WithNative(cfg.Native),
		engine.WithMaxPixelRatio(cfg.Window.MaxPixelRatio),
		engine.WithRouterOptions(routerOptions...),
	)
	if err != nil {
		return err
	}
	return host.Run()
}
