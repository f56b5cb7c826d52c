// Command mudra controls desktop applications with right-hand finger poses
// captured from a webcam.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/launcher"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// configEnv names the config file when -config is not given.
const configEnv = "MUDRA_CONFIG"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv(configEnv), "Path to YAML config file (env "+configEnv+")")
		cameraID   = flag.Int("camera", 0, "Camera device index")
		width      = flag.Int("width", 0, "Requested frame width")
		height     = flag.Int("height", 0, "Requested frame height")
		headless   = flag.Bool("headless", false, "Run without a preview window")
		useTray    = flag.Bool("tray", false, "Show the system tray menu (implies -headless)")
		serveAddr  = flag.String("serve", "", "Serve the HTTP API on this address, e.g. 127.0.0.1:8080")
		storePath  = flag.String("store", "", "Path of the sqlite journal; empty keeps the config value")
		staticDir  = flag.String("web", "", "Directory of static files served at / when -serve is set")
		logLevel   = flag.String("log-level", "", "Log level: error, warn, info, debug")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	overrides := config.FlagOverrides{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			overrides.CameraID = cameraID
		case "width":
			overrides.Width = width
		case "height":
			overrides.Height = height
		case "headless":
			overrides.Headless = headless
		case "tray":
			overrides.Tray = useTray
		case "serve":
			overrides.ServeAddr = serveAddr
		case "store":
			overrides.StorePath = storePath
		case "log-level":
			overrides.LogLevel = logLevel
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error: invalid config:", err)
		return 1
	}

	logger := config.NewLogger(os.Stderr, cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Store.Path != "" {
		st, err = store.New(config.ExpandPath(cfg.Store.Path))
		if err != nil {
			logger.Error("failed to open journal", "path", cfg.Store.Path, "err", err)
			return 1
		}
		defer st.Close()
	}

	det, err := newDetector(cfg.Detector, logger)
	if err != nil {
		logger.Error("failed to create hand detector", "err", err)
		return 1
	}

	registry := launcher.NewRegistry(programs(cfg)...)
	executor := launcher.NewExecutor(cfg.Process.TerminateCommand, time.Duration(cfg.Process.TimeoutMS)*time.Millisecond)
	executor.SetLogger(logger.With("component", "launcher"))
	dispatcher := launcher.NewDispatcher(registry, executor, logger.With("component", "launcher"))

	var disp display.Display
	if cfg.Display.Headless || cfg.Tray.Enabled {
		disp = display.NewHeadless()
	} else {
		disp = display.NewWindow(cfg.Display.WindowTitle)
	}

	sess := session.New(session.Config{
		Camera:     capture.NewCamera(cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height),
		Detector:   det,
		Dispatcher: dispatcher,
		Display:    disp,
		Keyboard: keyboard.NewRenderer(keyboard.Layout{
			Origin:  image.Pt(cfg.Keyboard.OriginX, cfg.Keyboard.OriginY),
			KeySize: cfg.Keyboard.KeySize,
			Gap:     cfg.Keyboard.Gap,
		}),
		Store:     st,
		Logger:    logger.With("component", "session"),
		ExitKey:   cfg.Display.ExitKey,
		DrawHands: cfg.Display.DrawHands,
		Preview:   cfg.Server.Enabled,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{
			StaticDir: *staticDir,
			Store:     st,
			Source:    sess,
			Logger:    logger.With("component", "http"),
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				logger.Error("http server failed", "err", err)
			}
		}()
	}

	logger.Info("mudra starting",
		"camera", cfg.Camera.DeviceID,
		"resolution", fmt.Sprintf("%dx%d", cfg.Camera.Width, cfg.Camera.Height),
		"tray", cfg.Tray.Enabled,
		"server", cfg.Server.Enabled,
		"journal", cfg.Store.Path != "",
	)

	var runErr error
	if cfg.Tray.Enabled {
		runErr = runWithTray(ctx, cancel, sess, cfg, logger)
	} else {
		runErr = sess.Run(ctx)
	}
	executor.Wait()

	if runErr != nil {
		if errors.Is(runErr, session.ErrFrameRead) {
			logger.Error("camera stopped delivering frames", "err", runErr)
		} else {
			logger.Error("session failed", "err", runErr)
		}
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newDetector(cfg config.DetectorConfig, logger *slog.Logger) (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
		ScriptPath:      cfg.ScriptPath,
		PythonPath:      cfg.PythonPath,
	}, logger.With("component", "detector"))
	if err == nil {
		logger.Info("using MediaPipe hand detection")
		return mp, nil
	}
	if !cfg.AllowMockFallback {
		return nil, err
	}
	logger.Warn("MediaPipe not available, using mock detector", "err", err)
	return detector.NewMockDetector(), nil
}

func programs(cfg config.Config) []launcher.Program {
	out := make([]launcher.Program, 0, len(control.Apps))
	for _, app := range control.Apps {
		a := cfg.Apps[string(app)]
		out = append(out, launcher.Program{
			Name:        string(app),
			Paths:       a.Paths,
			Args:        a.Args,
			ProcessName: a.ProcessName,
		})
	}
	return out
}

// runWithTray runs the session in the background while the tray owns the
// main thread. Either side ending stops the other.
func runWithTray(ctx context.Context, cancel context.CancelFunc, sess *session.Session, cfg config.Config, logger *slog.Logger) error {
	t := tray.New(sess.IsEnabled())
	t.OnToggle(sess.SetEnabled)
	t.OnQuit(cancel)
	if cfg.Server.Enabled {
		url := "http://" + cfg.Server.Addr + "/api/stream"
		t.OnPreview(func() {
			if err := openURL(url); err != nil {
				logger.Warn("open preview", "url", url, "err", err)
			}
		})
	}

	go t.Watch(ctx, func() tray.Status {
		snap := sess.Status()
		var open []string
		for _, app := range control.Apps {
			if snap.State.IsOpen(app) {
				open = append(open, string(app))
			}
		}
		return tray.Status{Enabled: snap.Enabled, LastAction: snap.LastAction, OpenApps: open}
	})

	errCh := make(chan error, 1)
	go func() {
		err := sess.Run(ctx)
		errCh <- err
		t.Quit()
	}()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-errCh
}

func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(os.Stderr, "Right-hand gestures (index, middle, ring, little):")
		for _, b := range control.Bindings() {
			fmt.Fprintf(os.Stderr, "  %s  %s\n", b.Vector, b.Action)
		}
		fmt.Fprintln(os.Stderr, "A single left hand shows the keyboard overlay. ESC quits.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
}
