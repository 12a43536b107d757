// seehuhn.de/go/pdfpaint - render PDF page content to raster images
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Pdfpaint paints a built-in test card using the page painting engine and
// writes the result as a PNG file.
//
// The test card exercises filled and stroked paths, clipping, blend modes,
// images in several encodings, tiling and shading patterns, transparency
// groups and text.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pdfpaint"
	"seehuhn.de/go/pdfpaint/config"
	"seehuhn.de/go/pdfpaint/graphics/raster"
	"seehuhn.de/go/pdfpaint/render"
)

// page size in PDF units
const pageWidth, pageHeight = 612, 792

func main() {
	cfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in environment: %v\n", err)
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	outputFile := flag.String("o", "testcard.png", "output `file`")
	width := flag.Int("w", pageWidth, "image width in pixels")
	height := flag.Int("h", pageHeight, "image height in pixels")
	verbose := flag.Bool("v", false, "log progress and diagnostics")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}
	if *width < 1 || *height < 1 {
		fmt.Fprintf(os.Stderr, "Invalid image size %dx%d\n", *width, *height)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	pdfpaint.SetLogger(logger)

	if err := run(cfg, logger, *outputFile, *width, *height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, outputFile string, width, height int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := pdfpaint.NewStore()
	engine, err := render.New(cfg, store)
	if err != nil {
		return err
	}
	defer engine.Close()

	card, err := buildTestCard(store, engine)
	if err != nil {
		return err
	}
	defer engine.ReleaseProgram(card)
	engine.Prefetch(card)

	// PDF user space has the y-axis pointing up.
	base := matrix.Matrix{
		float64(width) / pageWidth, 0,
		0, -float64(height) / pageHeight,
		0, float64(height),
	}

	var interrupted atomic.Bool
	go func() {
		<-ctx.Done()
		interrupted.Store(true)
	}()

	surface := raster.NewSurface(width, height)
	res := engine.Replay(ctx, card, surface, &render.Pass{
		Base: base,
		Listener: func(ops int) {
			logger.Info("painting", "ops", ops, "total", card.Len())
		},
		Stop: interrupted.Load,
	})
	if res.Stopped {
		logger.Warn("painting interrupted, writing partial image", "ops", res.Ops)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	err = png.Encode(out, surface.Img)
	if err != nil {
		out.Close()
		return err
	}
	err = out.Close()
	if err != nil {
		return err
	}

	logger.Info("done",
		"file", outputFile,
		"ops", res.Ops,
		"decodes", engine.Decodes(),
		"cached", engine.Cache().Len())
	return nil
}
