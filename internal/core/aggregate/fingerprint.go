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

// Package aggregate assembles the response envelope of an analysis.
//
// The contextual emotions, contextual sentiments and explainability scores
// are cosmetic: they come from a generator seeded by the video id and carry no
// statistical meaning. They are reproducible for a given id and feature set.
package aggregate

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// Fingerprint returns the video id for an uploaded filename: the first eight
// hex characters of its MD5 digest. Equal filenames share an id.
func Fingerprint(filename string) string {
	sum := md5.Sum([]byte(filename))
	return hex.EncodeToString(sum[:])[:8]
}

// NewGenerator returns the pseudo-random generator seeded by videoID.
func NewGenerator(videoID string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(videoID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// labelSuffix is the three digit suffix of a label id.
func labelSuffix(label string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return fmt.Sprintf("%03d", h.Sum32()%1000)
}

// sample draws k distinct elements of pool in random order.
func sample(rng *rand.Rand, pool []string, k int) []string {
	items := append([]string(nil), pool...)
	k = min(k, len(items))
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}

// dedupe removes repeated labels keeping the first occurrence.
func dedupe(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
