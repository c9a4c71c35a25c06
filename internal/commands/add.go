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
	Register(&AddCmd{})
}

// AddCmd implements the add command: put an image into a list, creating the
// list when it does not exist yet.
type AddCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Add an image to a list" }
func (c *AddCmd) Usage() string     { return "gallery add --list <list-name> <image-id>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	imageID, code := imageArg(args, errOut)
	if code != exitcode.Success {
		return code
	}

	all, err := svc.ListLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	m := lists.NewMembership(svc, imageID, all, cfg.Logger)
	list, err := m.CreateAndAdd(ctx, all, c.listName)
	if errors.Is(err, lists.ErrEmptyName) {
		fmt.Fprintln(errOut, "error: list name required (--list)")
		return exitcode.UserError
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok: %s\n", list.Name)
	}
	return exitcode.Success
}

// imageArg checks that exactly one image ID was given.
func imageArg(args []string, errOut io.Writer) (string, int) {
	switch len(args) {
	case 0:
		fmt.Fprintln(errOut, "error: image id required")
		return "", exitcode.UserError
	case 1:
		return args[0], exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return "", exitcode.UserError
	}
}
