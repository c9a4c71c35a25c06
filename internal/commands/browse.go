package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"gallery/internal/browse"
	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/fetch"
	"gallery/internal/service"
)

func init() {
	Register(&BrowseCmd{})
}

// BrowseCmd implements the interactive browser.
type BrowseCmd struct {
	in io.Reader
}

// SetInput replaces the terminal input (for testing).
func (c *BrowseCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *BrowseCmd) Name() string      { return "browse" }
func (c *BrowseCmd) Aliases() []string { return []string{"b"} }
func (c *BrowseCmd) Synopsis() string  { return "Browse images interactively" }
func (c *BrowseCmd) Usage() string     { return "gallery browse [common flags]" }
func (c *BrowseCmd) NeedsStore() bool  { return true }

func (c *BrowseCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BrowseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	opts := cfg.Fetch
	opts.Logger = logger(cfg)
	ctrl := fetch.New(fetch.StoreFunc(svc), opts)
	defer ctrl.Close()

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}
	if c.in != nil {
		progOpts = append(progOpts, tea.WithInput(c.in))
	} else {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(browse.New(ctrl, svc, opts.Logger), progOpts...).Run(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
