package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/lists"
	"gallery/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command: take an image out of a list.
type RmCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *RmCmd) SetListName(name string) {
	c.listName = name
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return nil }
func (c *RmCmd) Synopsis() string  { return "Remove an image from a list" }
func (c *RmCmd) Usage() string     { return "gallery rm --list <list-name> <image-id>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	imageID, code := imageArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	if c.listName == "" {
		fmt.Fprintln(errOut, "error: list name required (--list)")
		return exitcode.UserError
	}

	all, err := svc.ListLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	list, err := service.FindList(all, c.listName)
	if err != nil {
		return reportError(errOut, err)
	}

	if !list.Contains(imageID) {
		fmt.Fprintf(errOut, "error: image not in list %s: %s\n", list.Name, imageID)
		return exitcode.UserError
	}

	m := lists.NewMembership(svc, imageID, all, cfg.Logger)
	if err := m.Toggle(ctx, list.ID, false); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
