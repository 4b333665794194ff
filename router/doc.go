// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires HTTP routes to their handlers.

Routes use Go 1.22+ pattern syntax with method matching and path
parameters. Every session and vote route runs through the logging
middleware; the WebSocket stream route logs its own open/close.
*/
package router
