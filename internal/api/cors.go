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
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/jaycherian/video-sentiment-analyzer/internal/cloud"
)

// CorsConfig converts the configured allow-list into the cors middleware
// settings. Origins may contain one "*" wildcard, e.g.
// "https://*.vercel.app"; a lone "*" allows every origin.
func CorsConfig(c cloud.Cors) cors.Config {
	out := cors.Config{
		AllowMethods:  c.AllowMethods,
		AllowHeaders:  c.AllowHeaders,
		ExposeHeaders: []string{RequestIDHeader},
		AllowWildcard: true,
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(c.AllowOrigins, "*") {
		out.AllowAllOrigins = true
		return out
	}
	out.AllowOrigins = c.AllowOrigins
	return out
}
