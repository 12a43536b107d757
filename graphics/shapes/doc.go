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

// Package shapes implements the paint-stack interpreter.
//
// A [Program] is an append-only list of paint operations for one page or
// form XObject.  It is built once by a content stream parser and can then
// be replayed any number of times onto raster surfaces using [Replay].
//
// Replay never fails.  Problems with the content, like images which
// cannot be decoded or unsupported shadings, only cause less to be
// painted.  A replay can be stopped between operations, and the partially
// painted surface remains valid.
package shapes
