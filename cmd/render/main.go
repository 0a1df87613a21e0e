package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"pdf-viewer/internal/config"
	"pdf-viewer/internal/domain"
	"pdf-viewer/internal/viewer"

	"github.com/joho/godotenv"
)

func main() {
	var (
		out     = flag.String("o", "page.png", "output PNG file")
		page    = flag.Int("page", 1, "page to draw (1-based)")
		zoom    = flag.Int("zoom", 1, "zoom factor (1-5)")
		x       = flag.Int("x", 0, "pan offset x")
		y       = flag.Int("y", 0, "pan offset y")
		width   = flag.Int("width", 0, "viewport width (default from VIEWPORT_WIDTH)")
		height  = flag.Int("height", 0, "viewport height (default from VIEWPORT_HEIGHT)")
		preview = flag.Bool("preview", false, "draw at the preview resolution (RENDER_DPI) with cheaper scaling")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <url|path|storage://bucket/path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	container := config.NewContainer()

	w, h := container.Config.GetViewportSize()
	if *width > 0 {
		w = *width
	}
	if *height > 0 {
		h = *height
	}
	if err := domain.CheckViewport(image.Pt(w, h)); err != nil {
		log.Fatalf("Invalid viewport: %v", err)
	}

	mode := container.Config.GetRenderMode()
	if *preview {
		mode = domain.RenderModePreview
	}

	v := viewer.New(container.Renderer, container.Fetcher, container.Logger, viewer.WithRenderMode(mode))
	defer v.Close()

	res := <-v.Load(context.Background(), flag.Arg(0))
	if res.Err != nil {
		log.Fatalf("Failed to load PDF: %v", res.Err)
	}
	if err := v.SetPage(*page); err != nil {
		log.Fatalf("Invalid page: %v", err)
	}
	if err := v.SetZoom(*zoom); err != nil {
		log.Fatalf("Invalid zoom: %v", err)
	}
	v.SetPosition(image.Pt(*x, *y))

	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	if _, err := v.Draw(frame); err != nil {
		log.Fatalf("Failed to draw page: %v", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	if err := png.Encode(f, frame); err != nil {
		f.Close()
		log.Fatalf("Failed to encode PNG: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("Wrote page %d of %d to %s\n", v.Page(), v.PageCount(), *out)
}
