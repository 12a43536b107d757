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

// Package config holds the settings of the page painting engine.
//
// A [Config] is constructed once, typically using [FromEnv] followed by
// [Config.RegisterFlags], and is then passed to every component.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Config collects all tunable settings of the engine.
type Config struct {
	// ImageCacheEnabled controls whether decoded images are kept in memory.
	// If false, every paint pass decodes its images again.
	ImageCacheEnabled bool

	// ImageCacheMB is the capacity of the image cache, in megabytes.
	ImageCacheMB int

	// DecodeWorkers is the number of goroutines used for decoding images.
	DecodeWorkers int

	// AsyncImages selects background decoding of images.  If false,
	// images are decoded on the goroutine which needs them.
	AsyncImages bool

	// DisableClip makes the interpreter ignore all clipping paths.
	// This is a work-around for broken files only.
	DisableClip bool

	// DisableAlpha makes the interpreter ignore constant alpha and soft
	// masks.  This is a work-around for broken files only.
	DisableAlpha bool

	// ProgressInterval is the minimal time between two progress
	// notifications during a paint pass.
	ProgressInterval time.Duration

	// ImageScaling is the default image variant policy, one of "native",
	// "fixed" and "smooth".
	ImageScaling string
}

// Default values.
const (
	DefaultDecodeWorkers    = 2
	DefaultProgressInterval = 250 * time.Millisecond
	DefaultImageScaling     = "native"
)

// Default returns the default configuration.
// The image cache capacity is set to a quarter of the available memory.
func Default() *Config {
	return &Config{
		ImageCacheEnabled: true,
		ImageCacheMB:      defaultCacheMB(),
		DecodeWorkers:     DefaultDecodeWorkers,
		AsyncImages:       true,
		ProgressInterval:  DefaultProgressInterval,
		ImageScaling:      DefaultImageScaling,
	}
}

func defaultCacheMB() int {
	mb := availableMemory() / 4 / (1 << 20)
	return int(max(mb, 16))
}

// CacheBytes returns the image cache capacity in bytes.
// The result is zero if the cache is disabled.
func (c *Config) CacheBytes() int64 {
	if !c.ImageCacheEnabled {
		return 0
	}
	return int64(c.ImageCacheMB) << 20
}

// Validate checks that all settings are in range.
func (c *Config) Validate() error {
	var errs []error
	if c.ImageCacheMB < 0 {
		errs = append(errs, fmt.Errorf("invalid image cache size %d MB", c.ImageCacheMB))
	}
	if c.DecodeWorkers < 1 {
		errs = append(errs, fmt.Errorf("invalid number of decode workers %d", c.DecodeWorkers))
	}
	if c.ProgressInterval < 0 {
		errs = append(errs, fmt.Errorf("invalid progress interval %s", c.ProgressInterval))
	}
	switch c.ImageScaling {
	case "native", "fixed", "smooth":
		// pass
	default:
		errs = append(errs, fmt.Errorf("invalid image scaling %q", c.ImageScaling))
	}
	return errors.Join(errs...)
}

// Environment variables recognized by [FromEnv].
const (
	EnvImageCacheEnabled = "PDFPAINT_IMAGECACHE_ENABLED"
	EnvImageCacheMB      = "PDFPAINT_IMAGECACHE_MB"
	EnvDecodeWorkers     = "PDFPAINT_DECODE_WORKERS"
	EnvAsyncImages       = "PDFPAINT_ASYNC_IMAGES"
	EnvDisableClip       = "PDFPAINT_DISABLE_CLIP"
	EnvDisableAlpha      = "PDFPAINT_DISABLE_ALPHA"
	EnvProgressMS        = "PDFPAINT_PROGRESS_MS"
	EnvImageScaling      = "PDFPAINT_IMAGE_SCALING"
)

// FromEnv returns the default configuration, modified by the environment
// variables found using lookup.  Normally, lookup is [os.LookupEnv].
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	c := Default()

	var errs []error
	getBool := func(key string, dst *bool) {
		if s, ok := lookup(key); ok {
			v, err := strconv.ParseBool(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = v
		}
	}
	getInt := func(key string, dst *int) {
		if s, ok := lookup(key); ok {
			v, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = v
		}
	}

	getBool(EnvImageCacheEnabled, &c.ImageCacheEnabled)
	getInt(EnvImageCacheMB, &c.ImageCacheMB)
	getInt(EnvDecodeWorkers, &c.DecodeWorkers)
	getBool(EnvAsyncImages, &c.AsyncImages)
	getBool(EnvDisableClip, &c.DisableClip)
	getBool(EnvDisableAlpha, &c.DisableAlpha)

	ms := -1
	getInt(EnvProgressMS, &ms)
	if ms >= 0 {
		c.ProgressInterval = time.Duration(ms) * time.Millisecond
	}
	if s, ok := lookup(EnvImageScaling); ok {
		c.ImageScaling = s
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterFlags registers command line flags for all settings in fs.
// The current values of c are used as the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ImageCacheEnabled, "image-cache", c.ImageCacheEnabled,
		"keep decoded images in memory")
	fs.IntVar(&c.ImageCacheMB, "image-cache-mb", c.ImageCacheMB,
		"image cache capacity in `MB`")
	fs.IntVar(&c.DecodeWorkers, "decode-workers", c.DecodeWorkers,
		"number of image decoding goroutines")
	fs.BoolVar(&c.AsyncImages, "async-images", c.AsyncImages,
		"decode images in the background")
	fs.BoolVar(&c.DisableClip, "disable-clip", c.DisableClip,
		"ignore clipping paths (work-around for broken files)")
	fs.BoolVar(&c.DisableAlpha, "disable-alpha", c.DisableAlpha,
		"ignore transparency (work-around for broken files)")
	fs.Func("progress-ms", "progress notification interval in `milliseconds`",
		func(s string) error {
			ms, err := strconv.Atoi(s)
			if err != nil {
				return err
			}
			if ms < 0 {
				return errors.New("negative interval")
			}
			c.ProgressInterval = time.Duration(ms) * time.Millisecond
			return nil
		})
	fs.StringVar(&c.ImageScaling, "image-scaling", c.ImageScaling,
		"image scaling policy: native, fixed or smooth")
}
