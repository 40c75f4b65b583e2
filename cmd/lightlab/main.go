package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gekko3d/lightlab"
	"github.com/gekko3d/lightlab/platform"
)

func main() {
	configPath := flag.String("config", "lightlab.toml", "TOML configuration file")
	headless := flag.Bool("headless", false, "run without a window or GPU")
	frames := flag.Int("frames", 0, "stop after N frames (0 runs until quit)")
	debug := flag.Bool("debug", false, "enable debug logging")
	terminal := flag.Bool("terminal", true, "show the parameter panel in the terminal")
	flag.Parse()

	if err := run(*configPath, *headless, *frames, *debug, *terminal); err != nil {
		fmt.Fprintln(os.Stderr, "lightlab:", err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool, frames int, debug, terminal bool) error {
	cfg, err := lightlab.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lightlab: using defaults:", err)
	}
	cfg.Log.Debug = cfg.Log.Debug || debug

	opts := lightlab.SandboxOptions{
		Config:   cfg,
		Terminal: terminal && cfg.Panel.Terminal,
	}
	if headless && frames <= 0 && !opts.Terminal {
		return fmt.Errorf("a headless run needs -frames or the terminal panel to stop")
	}
	if !headless {
		window, err := platform.NewWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
		if err != nil {
			return err
		}
		defer window.Destroy()
		renderer, err := platform.NewRenderer(window)
		if err != nil {
			return err
		}
		opts.Renderer = renderer
		opts.RendererName = "wgpu"
		opts.Input = platform.NewGLFWInput(window)
	}

	app, err := lightlab.NewSandbox(opts)
	if err != nil {
		if opts.Renderer != nil {
			opts.Renderer.Close()
		}
		return err
	}
	defer lightlab.CloseSandbox(app)

	if frames > 0 {
		app.RunFrames(frames)
		return nil
	}
	app.Run()
	return nil
}
