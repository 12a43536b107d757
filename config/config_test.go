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

package config

import (
	"flag"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := m[key]
		return val, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if !c.ImageCacheEnabled || !c.AsyncImages {
		t.Error("cache and async decoding should be on by default")
	}
	if c.DisableClip || c.DisableAlpha {
		t.Error("escape hatches should be off by default")
	}
	if c.DecodeWorkers != DefaultDecodeWorkers {
		t.Errorf("DecodeWorkers = %d", c.DecodeWorkers)
	}
	if c.ImageCacheMB <= 0 {
		t.Errorf("ImageCacheMB = %d", c.ImageCacheMB)
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		EnvImageCacheEnabled: "false",
		EnvImageCacheMB:      "64",
		EnvDecodeWorkers:     "5",
		EnvAsyncImages:       "0",
		EnvDisableClip:       "true",
		EnvDisableAlpha:      "1",
		EnvProgressMS:        "40",
		EnvImageScaling:      "smooth",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		ImageCacheEnabled: false,
		ImageCacheMB:      64,
		DecodeWorkers:     5,
		AsyncImages:       false,
		DisableClip:       true,
		DisableAlpha:      true,
		ProgressInterval:  40 * time.Millisecond,
		ImageScaling:      "smooth",
	}
	if d := cmp.Diff(want, c); d != "" {
		t.Error(d)
	}
	if c.CacheBytes() != 0 {
		t.Error("disabled cache has non-zero capacity")
	}
}

func TestFromEnvErrors(t *testing.T) {
	cases := []map[string]string{
		{EnvImageCacheMB: "lots"},
		{EnvAsyncImages: "maybe"},
		{EnvDecodeWorkers: "0"},
		{EnvImageScaling: "bicubic"},
	}
	for _, m := range cases {
		if _, err := FromEnv(env(m)); err == nil {
			t.Errorf("%v: expected an error", m)
		}
	}
}

func TestFlags(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	err := fs.Parse([]string{
		"-image-cache-mb", "12",
		"-decode-workers=3",
		"-async-images=false",
		"-progress-ms", "1000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.ImageCacheMB != 12 || c.DecodeWorkers != 3 || c.AsyncImages {
		t.Errorf("flags not applied: %+v", c)
	}
	if c.ProgressInterval != time.Second {
		t.Errorf("ProgressInterval = %s", c.ProgressInterval)
	}
	if c.CacheBytes() != 12<<20 {
		t.Errorf("CacheBytes = %d", c.CacheBytes())
	}
}
