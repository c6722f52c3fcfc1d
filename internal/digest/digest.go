// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package digest fingerprints grammar source text so a host can tell
// whether two {version: grammar-text} entries describe the same
// grammar without re-parsing and re-resolving both of them. It is a
// thin wrapper over opencontainers/go-digest, the content-addressing
// library OCI registries use to key blobs, repurposed here to key
// compiled grammars instead of image layers.
package digest

import digest "github.com/opencontainers/go-digest"

// Digest is a content fingerprint of a piece of grammar source text, in
// the "algorithm:hex" form go-digest uses for OCI blob references.
type Digest = digest.Digest

// Of returns the canonical digest of text, using the same algorithm
// go-digest defaults to for OCI manifests (sha256).
func Of(text string) Digest {
	return digest.FromString(text)
}

// Verify reports whether text hashes to want, for a host that cached a
// grammar keyed by digest and wants to confirm the cache entry still
// matches its source before reusing it.
func Verify(text string, want Digest) bool {
	return Of(text) == want
}
