// Package cli implements the interactive client commands.
package cli

import (
	"context"
	"fmt"

	apiclient "github.com/driftlabs/driftsync/internal/client/api"
	"github.com/driftlabs/driftsync/internal/client/iocli"
	"github.com/driftlabs/driftsync/internal/client/storage"
	clientsync "github.com/driftlabs/driftsync/internal/client/sync"
	"github.com/driftlabs/driftsync/internal/crdt"
)

// Cli wires the client commands to their collaborators.
type Cli struct {
	io          iocli.IO
	apiClient   apiclient.ClientAPI
	coordinator *clientsync.Coordinator
	documents   storage.DocumentStorage
	sessions    storage.SessionStorage
	engine      crdt.Engine
}

// New creates the command dispatcher.
func New(
	io iocli.IO,
	apiClient apiclient.ClientAPI,
	coordinator *clientsync.Coordinator,
	documents storage.DocumentStorage,
	sessions storage.SessionStorage,
	engine crdt.Engine,
) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		coordinator: coordinator,
		documents:   documents,
		sessions:    sessions,
		engine:      engine,
	}
}

// Run dispatches one command.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "sync":
		return c.runSync(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "edit":
		return c.runEdit(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// Usage returns the command summary shown on bad invocations.
func Usage() string {
	return `Usage: driftsync <command> [flags]

Commands:
  register             Create an account
  login                Authenticate and store a session
  logout               Drop the stored session
  status               Show connection state and pending changes
  sync                 Drain the sync queue now (--redrive <seq> to retry a dead letter)
  add                  Create a document (--type, --title, --status, --tags, --body)
  edit                 Update a document (--title, --status, --tags, --body)
  get                  Show one document by id
  list                 List local documents (--type to filter)
  delete               Delete a document by id
`
}
