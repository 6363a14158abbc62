package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"screen-snip/src/singleinstance"
)

const delegateTimeout = 2 * time.Second

// residentShell is the part of the window a later launch can drive.
type residentShell interface {
	RequestSnip() bool
	ShowWindow()
}

// delegateToResident forwards this launch to a running instance. It reports
// delegated=true when a resident answered; err then carries its reply.
func delegateToResident(ctx context.Context, client singleinstance.Client, snip bool) (bool, error) {
	cmd := singleinstance.CommandShow
	if snip {
		cmd = singleinstance.CommandSnip
	}

	ctx, cancel := context.WithTimeout(ctx, delegateTimeout)
	defer cancel()

	delegated, err := client.Delegate(ctx, cmd)
	if !delegated {
		if err != nil {
			log.Printf("Resident scan failed: %v", err)
		}
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("running instance refused %s: %w", cmd, err)
	}
	log.Printf("Delegated %s to running instance", cmd)
	return true, nil
}

// serveResident answers commands from later launches until ctx ends. do runs
// a function on the UI goroutine and waits for it.
func serveResident(ctx context.Context, server singleinstance.Server, shell residentShell, do func(func())) {
	for {
		conn, err := server.Next(ctx)
		if err != nil {
			return
		}
		if err := handleCommand(conn.Command(), shell, do); err != nil {
			_ = conn.RespondError(err.Error())
		} else {
			_ = conn.RespondSuccess()
		}
		_ = conn.Close()
	}
}

func handleCommand(cmd singleinstance.Command, shell residentShell, do func(func())) error {
	switch cmd {
	case singleinstance.CommandShow:
		do(shell.ShowWindow)
		return nil
	case singleinstance.CommandSnip:
		var started bool
		do(func() { started = shell.RequestSnip() })
		if !started {
			return fmt.Errorf("Start Snip is currently disabled")
		}
		return nil
	default:
		return fmt.Errorf("unsupported command %q", cmd)
	}
}
