// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sqlstore implements store.Store over database/sql for durable
single-node deployments.

The same SQL runs against SQLite (modernc.org/sqlite, driver "sqlite")
and PostgreSQL (lib/pq, driver "postgres"); main picks the driver from
configuration. Nodes are flat (path, value, updated_at) rows; Set and
Update clear the replaced subtree and insert the new leaf inside one
transaction, subtree reads use a path-prefix LIKE and store.Assemble.

Watch notifications are in-process only. A second process pointed at the
same database reads consistent data but receives no push, so multi-client
live sessions need memstore (one process) or redistore (many).
*/
package sqlstore
