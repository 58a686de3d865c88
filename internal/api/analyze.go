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

package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"
)

// UploadField is the multipart field holding the video.
const UploadField = "video"

// Client-facing error texts.
const (
	MsgNoUploadProvided = "No video file provided"
	MsgEmptyFilename    = "No video file selected"
	MsgProcessingFailed = "Processing failed: "
)

var (
	// ErrNoUploadProvided means the request has no "video" file field.
	ErrNoUploadProvided = errors.New("no video file provided")
	// ErrEmptyFilename means the "video" field was sent without a file name.
	ErrEmptyFilename = errors.New("no video file selected")
)

// UploadErrorMessage returns the response text for an upload error.
func UploadErrorMessage(err error) string {
	if errors.Is(err, ErrEmptyFilename) {
		return MsgEmptyFilename
	}
	return MsgNoUploadProvided
}

// AnalysisRouter registers POST /analyze.
//
// Responses:
//   - 200 with the envelope.
//   - 400 {"error": "No video file provided"} when the field is missing.
//   - 400 {"error": "No video file selected"} when the file name is empty.
//   - 500 {"error": "Processing failed: <message>"} when a stage aborts.
func AnalysisRouter(r gin.IRouter, analyzer Analyzer) {
	r.POST("/analyze", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err == nil {
			defer form.RemoveAll()
		}
		header, err := uploadedFile(form, err)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": UploadErrorMessage(err)})
			return
		}

		file, err := header.Open()
		if err != nil {
			abortProcessing(c, err)
			return
		}
		defer file.Close()

		envelope, err := analyzer.Analyze(c.Request.Context(), header.Filename, file)
		if err != nil {
			abortProcessing(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope)
	})
}

// uploadedFile picks the video file from the parsed form. The multipart
// reader files parts without a file name as plain values, which is how an
// empty selection is told apart from a missing field.
func uploadedFile(form *multipart.Form, parseErr error) (*multipart.FileHeader, error) {
	if parseErr != nil || form == nil {
		return nil, ErrNoUploadProvided
	}
	if files := form.File[UploadField]; len(files) > 0 {
		if files[0].Filename == "" {
			return nil, ErrEmptyFilename
		}
		return files[0], nil
	}
	if _, ok := form.Value[UploadField]; ok {
		return nil, ErrEmptyFilename
	}
	return nil, ErrNoUploadProvided
}

func abortProcessing(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "Error processing video", slog.Any("error", xerrors.New(err)))
	c.JSON(http.StatusInternalServerError, gin.H{"error": MsgProcessingFailed + err.Error()})
}
