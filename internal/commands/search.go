package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/filter"
	"gallery/internal/output"
	"gallery/internal/service"
	"gallery/internal/tags"
)

func init() {
	Register(&SearchCmd{})
	Register(&TagsCmd{})
}

// selectionFlags are shared by search and tags.
type selectionFlags struct {
	tags  stringsFlag
	lists stringsFlag
}

func (f *selectionFlags) register(fs *flag.FlagSet) {
	fs.Var(&f.tags, "tag", "")
	fs.Var(&f.tags, "t", "")
	fs.Var(&f.lists, "list", "")
	fs.Var(&f.lists, "l", "")
}

// view is the result of a query after list and tag filtering.
type view struct {
	images  []service.Image
	lists   []service.List
	listIDs []string
	summary string
}

func (f *selectionFlags) load(ctx context.Context, cfg *config.Config, svc service.Service, args []string) (view, error) {
	snap, err := query(ctx, cfg, svc, joinArgs(args))
	if err != nil {
		return view{}, err
	}
	listIDs, err := resolveListIDs(snap.Result.Lists, f.lists)
	if err != nil {
		return view{}, err
	}
	return view{
		images:  filter.Apply(snap.Result.Images, snap.Result.Lists, listIDs, f.tags),
		lists:   snap.Result.Lists,
		listIDs: listIDs,
		summary: filter.Summary(snap.Result.Lists, listIDs),
	}, nil
}

// SearchCmd implements the search command.
// Handles both `gallery` (no args) and `gallery search <query...>`.
type SearchCmd struct {
	sel selectionFlags
}

// SetSelection sets the tag and list filters (for testing).
func (c *SearchCmd) SetSelection(tagNames, listNames []string) {
	c.sel = selectionFlags{tags: tagNames, lists: listNames}
}

func (c *SearchCmd) Name() string      { return "search" }
func (c *SearchCmd) Aliases() []string { return []string{"s"} }
func (c *SearchCmd) Synopsis() string  { return "Search images" }
func (c *SearchCmd) Usage() string {
	return "gallery search [--tag <tag>]... [--list <list-name>]... [query...]"
}
func (c *SearchCmd) NeedsStore() bool { return true }

func (c *SearchCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sel.register(fs)
}

func (c *SearchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	v, err := c.sel.load(ctx, cfg, svc, args)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatHeader(out, v.summary)
	}
	for i, img := range v.images {
		output.FormatImage(out, i+1, img)
	}
	if len(v.images) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no images")
	}
	return exitcode.Success
}

// compactTags is the number of tags shown before "more".
const compactTags = 9

// TagsCmd implements the tags command: the ranked tags of the filtered images.
type TagsCmd struct {
	sel selectionFlags
	all bool
}

// SetSelection sets the tag and list filters (for testing).
func (c *TagsCmd) SetSelection(tagNames, listNames []string) {
	c.sel = selectionFlags{tags: tagNames, lists: listNames}
}

// SetAll disables compact output (for testing).
func (c *TagsCmd) SetAll(all bool) {
	c.all = all
}

func (c *TagsCmd) Name() string      { return "tags" }
func (c *TagsCmd) Aliases() []string { return nil }
func (c *TagsCmd) Synopsis() string  { return "Print tags of the matching images" }
func (c *TagsCmd) Usage() string {
	return "gallery tags [--all] [--tag <tag>]... [--list <list-name>]... [query...]"
}
func (c *TagsCmd) NeedsStore() bool { return true }

func (c *TagsCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sel.register(fs)
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *TagsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	v, err := c.sel.load(ctx, cfg, svc, args)
	if err != nil {
		return reportError(errOut, err)
	}

	// Flag order is selection order: the last --tag is the most recent.
	sel := tags.NewSelection(time.Now(), c.sel.tags...)
	ranked := tags.Aggregate(v.images, sel)

	shown := ranked
	if !c.all {
		shown, _ = tags.Compact(ranked, compactTags)
	}
	for _, t := range shown {
		output.FormatTag(out, t)
	}
	if hidden := len(ranked) - len(shown); hidden > 0 && !cfg.Quiet {
		output.FormatMore(out, hidden)
	}
	return exitcode.Success
}
