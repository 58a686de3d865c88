// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines the command that saves an uploaded video to a local
// temporary file for ffprobe and ffmpeg.
//
// Logic Flow:
//  1. The first bytes of the upload are sniffed with the filetype library to
//     pick the file extension and MIME type; unknown content falls back to
//     ".mp4".
//  2. The temp file is created and registered on the context before any data
//     is written, so Close removes it even when the copy fails.
//  3. The sniffed header and the rest of the body are streamed into the file.
//  4. The path is stored under ParamVideoPath and as the chain output.
package commands

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/h2non/filetype"
	"github.com/jaycherian/video-sentiment-analyzer/internal/core/cor"
)

// Upload sniffing defaults.
const (
	DefaultUploadExtension = "mp4"
	DefaultUploadMIMEType  = "video/mp4"
	sniffLength            = 262
)

// UploadToTempFile writes the Upload found under its input parameter to disk.
type UploadToTempFile struct {
	cor.BaseCommand
	tempDir        string
	tempFilePrefix string
}

// NewUploadToTempFile creates the command. An empty tempDir selects the OS
// default temporary directory.
func NewUploadToTempFile(name string, tempDir string, tempFilePrefix string) *UploadToTempFile {
	out := &UploadToTempFile{
		BaseCommand:    *cor.NewBaseCommand(name),
		tempDir:        tempDir,
		tempFilePrefix: tempFilePrefix,
	}
	out.InputParamName = ParamUpload
	return out
}

// Execute saves the upload.
func (c *UploadToTempFile) Execute(context cor.Context) {
	upload, ok := context.Get(c.GetInputParam()).(*Upload)
	if !ok || upload == nil || upload.Body == nil {
		c.Fail(context, fmt.Errorf("no upload found under %s", c.GetInputParam()))
		return
	}

	header := make([]byte, sniffLength)
	n, err := io.ReadFull(upload.Body, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		c.Fail(context, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	header = header[:n]

	extension, mimeType := DefaultUploadExtension, DefaultUploadMIMEType
	if kind, err := filetype.Match(header); err == nil && kind != filetype.Unknown {
		extension, mimeType = kind.Extension, kind.MIME.Value
	}

	tempFile, err := os.CreateTemp(c.tempDir, c.tempFilePrefix+"*."+extension)
	if err != nil {
		c.Fail(context, fmt.Errorf("could not create temp file: %w", err))
		return
	}
	context.AddTempFile(tempFile.Name())

	written, err := io.Copy(tempFile, io.MultiReader(bytes.NewReader(header), upload.Body))
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to save upload, %d bytes written: %w", written, err))
		return
	}

	slog.Debug("upload saved", "video_id", VideoID(context), "file", tempFile.Name(), "bytes", written, "mime_type", mimeType)
	context.Add(ParamVideoPath, tempFile.Name())
	context.Add(ParamMIMEType, mimeType)
	c.Succeed(context, tempFile.Name())
}
