// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Provider issues the opaque anonymous participant identity a client
// coordinates under. The ID is stable for the lifetime of one client
// instance and is the correlation key for join, leave, and votes.
type Provider interface {
	ParticipantID() (string, error)
}

// Ephemeral issues a fresh identity per process. Used by tests and by
// callers that manage persistence themselves.
type Ephemeral struct {
	id string
}

// NewEphemeral returns a provider holding a new random identity.
func NewEphemeral() *Ephemeral {
	return &Ephemeral{id: uuid.NewString()}
}

func (e *Ephemeral) ParticipantID() (string, error) {
	return e.id, nil
}

// File persists the identity to a file so the same device keeps its ID
// across restarts, like the anonymous auth session a browser holds.
type File struct {
	path string
}

// NewFile returns a provider storing the identity at dir/participant_id.
func NewFile(dir string) *File {
	return &File{path: filepath.Join(dir, "participant_id")}
}

func (f *File) ParticipantID() (string, error) {
	data, err := os.ReadFile(f.path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read identity: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return "", fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write identity: %w", err)
	}
	return id, nil
}

// NewID mints a standalone participant ID. The HTTP facade uses this to
// hand identities to browser clients that cannot hold a local file.
func NewID() string {
	return uuid.NewString()
}
