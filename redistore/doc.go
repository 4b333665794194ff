// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package redistore implements store.Store on Redis for multi-process
deployments.

Every tree node is one Redis key holding its leaf JSON; subtree reads
SCAN the path prefix and assemble the nested value with store.Assemble.
Writes publish the changed path on one pub/sub channel, so watch
subscriptions converge across every process sharing the Redis. The
connectivity signal tracks the pub/sub subscription: it goes false when
the subscription drops and true again once it is re-established, while
existing Watch registrations stay alive across the gap.

Note the same weak guarantees as every backend: SCAN + MGET is not a
point-in-time read, and there is no cross-key atomicity. The engine is
specified against exactly these semantics.
*/
package redistore
