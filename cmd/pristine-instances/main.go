// Command pristine-instances draws a swarm of bouncing textured quads with one instanced draw call per frame.
//
// Press = to add quads, - to remove them, and Escape to quit.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/config"
	"github.com/Carmen-Shannon/pristine-go/engine/model"
	"github.com/Carmen-Shannon/pristine-go/engine/profiler"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/instance"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
	"github.com/Carmen-Shannon/pristine-go/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("pristine-instances failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	r := renderer.NewRenderer(cfg.RendererOptions()...)
	if err := r.Initialize(ctx, win); err != nil {
		return err
	}
	defer r.Release()

	p, err := renderer.NewBasicPipeline(r)
	if err != nil {
		return err
	}
	f := r.Factory()
	tex, err := loadTexture(f, cfg.Instances.Texture)
	if err != nil {
		return err
	}
	mat, err := f.CreateMaterial(material.Options{Pipeline: p, Textures: []material.Texture{tex}})
	if err != nil {
		return err
	}
	quad, err := model.NewModel(f, unitQuad(), mat, renderer.BasicContract)
	if err != nil {
		return err
	}
	defer quad.Release()

	pool := worker.NewDynamicWorkerPool(cfg.Instances.Workers, 256, time.Second)
	s := newSwarm(cfg.Instances.Size, uint64(time.Now().UnixNano()), pool, cfg.Instances.Workers)
	width, height := win.Size()

	im, err := f.CreateInstanceManager(instance.Options{
		Model:             quad,
		Pipeline:          p,
		Records:           s.spawn(cfg.Instances.Count, float32(width), float32(height)),
		PreallocatedCount: cfg.Instances.Preallocate,
	})
	if err != nil {
		return err
	}
	defer im.Release()

	if err := r.SetPipeline(p); err != nil {
		return err
	}

	step := max(cfg.Instances.Count/10, 1)
	win.SetKeyDownCallback(func(key uint32) {
		switch glfw.Key(key) {
		case glfw.KeyEqual, glfw.KeyKPAdd:
			w, h := win.Size()
			spawned := s.spawn(step, float32(w), float32(h))
			for i, rec := range spawned {
				if err := im.Add(rec); err != nil {
					logger.Warn("failed to add instance", "error", err)
					s.despawn(len(spawned) - i)
					return
				}
			}
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			for _, rec := range s.despawn(step) {
				if err := im.RemoveRecord(rec); err != nil {
					logger.Warn("failed to remove instance", "error", err)
				}
			}
		default:
			return
		}
		logger.Info("instance count changed", "count", im.Len(), "capacity", im.Capacity())
	})

	win.SetResizeCallback(func(w, h int) {
		// A minimized window reports a zero size; keep the old configuration until it is restored.
		if w == 0 || h == 0 {
			return
		}
		if err := r.Resize(w, h); err != nil {
			logger.Warn("failed to resize surface", "width", w, "height", h, "error", err)
		}
	})

	prof := profiler.NewProfiler(time.Now(), time.Second)
	last := time.Now()
	var frameErr error
	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			_ = win.Close()
			return
		}
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		w, h := win.Size()
		s.step(dt, float32(w), float32(h))
		if err := im.Pack(); err != nil {
			frameErr = err
			_ = win.Close()
			return
		}
		if err := drawFrame(r, im); err != nil {
			frameErr = err
			_ = win.Close()
			return
		}
		prof.Tick(now)
	})

	win.ProcessMessages()
	return frameErr
}

func drawFrame(r renderer.Renderer, im instance.Manager) error {
	if err := r.Begin(); err != nil {
		return err
	}
	if err := r.RenderInstances(im); err != nil {
		// Close the frame so the surface texture is presented and released.
		_ = r.End()
		return err
	}
	return r.End()
}

// loadTexture loads the image at path, or a 1x1 white texture when path is empty.
func loadTexture(f renderer.GraphicsFactory, path string) (material.Texture, error) {
	if path == "" {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		return f.CreateTexture(material.TextureOptions{Label: "white", Image: img})
	}
	img, format, err := material.LoadImage(path)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("texture decoded", "path", path, "format", format)
	return f.CreateTexture(material.TextureOptions{Label: path, Image: img})
}

// unitQuad is a 1x1 quad with its origin at the bottom left corner.
func unitQuad() *model.Mesh {
	corner := func(x, y float64) vertex.Vertex {
		return vertex.NewVertex(
			vertex.NewAttribute("position", x, y, 0),
			vertex.NewAttribute("normal", 0, 0, 1),
			vertex.NewAttribute("uv", x, 1-y),
			vertex.NewAttribute("color", 1, 1, 1, 1),
		)
	}
	return model.NewMesh(
		[]vertex.Vertex{corner(0, 0), corner(1, 0), corner(1, 1), corner(0, 1)},
		model.WithIndices([]uint16{0, 1, 2, 0, 2, 3}),
	)
}
