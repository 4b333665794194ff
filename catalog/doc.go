// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog supplies the read-only restaurant candidates a session
// votes on. Currently a static fixture; Source is the seam for a real
// search provider.
package catalog
