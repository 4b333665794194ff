// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is the per-participant engine: one Client per device,
holding the anonymous identity, the live session projection, and the
screen state machine.

Screens move on observation, not navigation. Create and join place the
client in the waiting room; the session state flipping to voting moves
every participant's screen, host included; consensus moves the matched
client to the match screen; deletion or a foreign state sends it home.
No client ever trusts a cached state value past the next subscription
tick - each decision reads the snapshot that triggered it.
*/
package client
