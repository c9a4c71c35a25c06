package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "gallery help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  gallery                                            Show the newest images
  gallery search [common flags] [--tag <tag>]... [--list <list-name>]... [query...]
  gallery tags [common flags] [--all] [--tag <tag>]... [--list <list-name>]... [query...]
  gallery browse [common flags]                      Interactive browser
  gallery lists [common flags] [--search <text>]
  gallery createlist [common flags] [--description <text>] <list-name>
  gallery renamelist [common flags] --to <new-name> <list-name>
  gallery rmlist [common flags] [--force] <list-name>
  gallery add [common flags] --list <list-name> <image-id>
  gallery rm [common flags] --list <list-name> <image-id>
  gallery upload [common flags] [--title <title>] [--tags <tag,tag>] <file>
  gallery url [common flags] <image-id>
  gallery login [common flags] [--force] --email <email> [--password-stdin]
  gallery logout [common flags]
  gallery help
  gallery version

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override the image store URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
