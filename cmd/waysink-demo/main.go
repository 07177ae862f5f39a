// waysink-demo runs the presentation engine against the in-process fake
// compositor: a synthetic producer paints frames at a configurable rate
// while a vblank loop completes frame callbacks at the refresh rate, so
// the submit/stage/drop behavior can be observed without a display server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ovlab/waysink/compositor/comptest"
	"github.com/ovlab/waysink/media"
	"github.com/ovlab/waysink/window"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	fps := envInt("FPS", 60)
	refresh := envInt("REFRESH", 60)
	duration := envDuration("DURATION", 5*time.Second)
	width := envInt("WIDTH", 1280)
	height := envInt("HEIGHT", 720)
	fullscreen := os.Getenv("FULLSCREEN") != ""
	explicit := os.Getenv("EXPLICIT_SYNC") != ""

	opts := []comptest.Option{comptest.WithOutputSize(1920, 1080)}
	if explicit {
		opts = append(opts, comptest.WithExplicitSync())
	}
	display := comptest.New(opts...)
	defer display.Close()

	info := media.VideoInfo{Width: width, Height: height, Format: media.PixelFormatBGRx}

	win, err := window.NewToplevel(display, info, fullscreen, window.WithLogger(slog.Default()))
	if err != nil {
		slog.Error("failed to create window", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	go func() {
		for ev := range win.Events() {
			slog.Info("window event", "event", ev)
		}
	}()

	slog.Info("waysink demo starting",
		"version", version,
		"size", fmt.Sprintf("%dx%d", width, height),
		"fps", fps,
		"refresh", refresh,
		"explicit_sync", explicit,
		"duration", duration,
	)

	videoSurface := display.Surfaces()[1]

	g, ctx := errgroup.WithContext(ctx)

	// Producer: paint and submit frames at the configured rate. Backing
	// stores are pooled and recycled once the compositor releases them.
	g.Go(func() error {
		pool := &sync.Pool{
			New: func() any { return make([]byte, width*height*4) },
		}
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()

		first := true
		for n := 0; ; n++ {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			data := pool.Get().([]byte)
			paint(data, width, height, n)
			frame := media.NewPooledFrame(data, info, func(f *media.Frame) {
				pool.Put(f.Data)
			})

			proxy, err := display.CreateBuffer(frame.Data, info)
			if err != nil {
				return fmt.Errorf("create buffer: %w", err)
			}
			buf := window.NewBuffer(proxy, frame, slog.Default())

			var vi *media.VideoInfo
			if first {
				vi = &info
				first = false
			}
			if win.Submit(buf, vi) {
				slog.Debug("frame dropped", "n", n)
			}
			frame.Unref() // producer reference; the engine holds its own
		}
	})

	// Vblank: complete one frame callback per refresh interval and release
	// superseded buffers, standing in for the compositor's render loop.
	g.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(refresh))
		defer ticker.Stop()

		var onScreen *comptest.Buffer
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			if att, ok := videoSurface.Attached().(*comptest.Buffer); ok && att != onScreen {
				if onScreen != nil {
					onScreen.Release()
				}
				onScreen = att
			}
			if explicit {
				for _, ss := range display.SurfaceSyncs() {
					rels := ss.Releases()
					for i := 0; i+1 < len(rels); i++ {
						rels[i].SignalImmediate()
					}
				}
			}
			videoSurface.CompleteFrame()
		}
	})

	if err := g.Wait(); err != nil {
		slog.Error("demo error", "error", err)
		os.Exit(1)
	}

	// Drain any in-flight frame, clear to black, then tear down.
	for videoSurface.CompleteFrame() {
		display.Roundtrip()
	}
	win.Submit(nil, nil)
	display.Roundtrip()
	win.Close()

	stats := win.Stats()
	slog.Info("demo finished",
		"submitted", stats.Submitted,
		"committed", stats.Committed,
		"dropped", stats.Dropped,
	)
}

// paint fills data with a moving gradient so successive frames differ.
func paint(data []byte, w, h, n int) {
	for y := 0; y < h; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			i := row + x*4
			data[i] = byte(x + n)
			data[i+1] = byte(y + n)
			data[i+2] = byte(n)
			data[i+3] = 0xff
		}
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		slog.Warn("ignoring invalid value", "key", key, "value", v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		slog.Warn("ignoring invalid value", "key", key, "value", v)
	}
	return fallback
}
