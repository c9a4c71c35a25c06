package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/lists"
	"gallery/internal/service"
)

func init() {
	Register(&CreateListCmd{})
	Register(&RenameListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	description string
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "gallery createlist [common flags] [--description <text>] <list-name>"
}
func (c *CreateListCmd) NeedsStore() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := joinArgs(args)
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Check if list already exists
	_, err := service.ResolveList(ctx, svc, name)
	if err == nil {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	}
	if !errors.Is(err, service.ErrNotFound) && !errors.Is(err, service.ErrAmbiguous) {
		return reportError(errOut, err)
	}

	if _, err := lists.NewManager(svc, cfg.Logger).Create(ctx, name, c.description); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct {
	to string
}

// SetTo sets the new name (for testing).
func (c *RenameListCmd) SetTo(name string) {
	c.to = name
}

func (c *RenameListCmd) Name() string      { return "renamelist" }
func (c *RenameListCmd) Aliases() []string { return nil }
func (c *RenameListCmd) Synopsis() string  { return "Rename a list" }
func (c *RenameListCmd) Usage() string     { return "gallery renamelist --to <new-name> <list-name>" }
func (c *RenameListCmd) NeedsStore() bool  { return true }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.to, "to", "", "")
}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := joinArgs(args)
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	list, err := service.ResolveList(ctx, svc, name)
	if err != nil {
		return reportError(errOut, err)
	}

	renamed, err := lists.NewManager(svc, cfg.Logger).Rename(ctx, list, c.to)
	if errors.Is(err, lists.ErrEmptyName) {
		fmt.Fprintln(errOut, "error: new name required (--to)")
		return exitcode.UserError
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if renamed.Name == list.Name {
			fmt.Fprintln(out, "unchanged")
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
