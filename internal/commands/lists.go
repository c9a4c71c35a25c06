package commands

import (
	"context"
	"flag"
	"io"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/lists"
	"gallery/internal/output"
	"gallery/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct {
	search string
}

// SetSearch sets the name filter (for testing).
func (c *ListsCmd) SetSearch(s string) {
	c.search = s
}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print all lists, most recently updated first" }
func (c *ListsCmd) Usage() string     { return "gallery lists [common flags] [--search <text>]" }
func (c *ListsCmd) NeedsStore() bool  { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	all, err := lists.NewManager(svc, cfg.Logger).Refresh(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	for _, list := range lists.Search(lists.SortByUpdated(all), c.search) {
		output.FormatListName(out, list)
	}

	return exitcode.Success
}
