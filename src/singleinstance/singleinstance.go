package singleinstance

// Loopback TCP ownership for the resident snipping window. A second launch
// hands its command to the resident and exits.

import (
	"context"
	"fmt"
	"strings"
)

// Command is a request a later launch forwards to the resident.
type Command string

const (
	// CommandSnip starts a new selection in the resident.
	CommandSnip Command = "SNIP"
	// CommandShow raises the resident's main window.
	CommandShow Command = "SHOW"
)

func parseCommand(line string) (Command, error) {
	switch c := Command(strings.TrimSpace(line)); c {
	case CommandSnip, CommandShow:
		return c, nil
	default:
		return "", fmt.Errorf("unknown command %q", strings.TrimSpace(line))
	}
}

// Server owns the TCP endpoint and answers forwarded commands.
type Server interface {
	// Start binds the first port of the configured range and accepts clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn is one forwarded command awaiting a reply.
type Conn interface {
	Command() Command
	RespondSuccess() error
	RespondError(msg string) error
	Close() error
}

// Client forwards commands to a resident server.
type Client interface {
	// Delegate scans the port range for a resident and sends it cmd. With no
	// resident it returns delegated=false and a nil error.
	Delegate(ctx context.Context, cmd Command) (delegated bool, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTcpClient() }
