// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package memstore is the in-process reference implementation of
store.Store. It backs all engine tests and the memory store mode of the
server, and pins the semantics the other backends must match: per-path
last-write-wins, subtree materialization with partial writes overlaying
whole-object writes, deletion pruning, and coalescing watch delivery.
*/
package memstore
