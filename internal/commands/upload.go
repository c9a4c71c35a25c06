package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/service"
)

func init() {
	Register(&UploadCmd{})
	Register(&URLCmd{})
}

// UploadCmd implements the upload command.
type UploadCmd struct {
	title string
	tags  string
}

// SetMeta sets title and comma-separated tags (for testing).
func (c *UploadCmd) SetMeta(title, tags string) {
	c.title = title
	c.tags = tags
}

func (c *UploadCmd) Name() string      { return "upload" }
func (c *UploadCmd) Aliases() []string { return nil }
func (c *UploadCmd) Synopsis() string  { return "Upload an image" }
func (c *UploadCmd) Usage() string {
	return "gallery upload [--title <title>] [--tags <tag,tag>] <file>"
}
func (c *UploadCmd) NeedsStore() bool { return true }

func (c *UploadCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.tags, "tags", "", "")
}

func (c *UploadCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: exactly one file required")
		return exitcode.UserError
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	title := strings.TrimSpace(c.title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	img, err := svc.UploadImage(ctx, service.NewImage{
		Title:    title,
		Tags:     splitTags(c.tags),
		FileName: filepath.Base(path),
		Data:     data,
	})
	if err != nil {
		return reportError(errOut, err)
	}

	if cfg.Quiet {
		fmt.Fprintln(out, img.ID)
	} else {
		fmt.Fprintf(out, "ok: %s %s\n", img.ID, svc.FileURL(img))
	}
	return exitcode.Success
}

// splitTags splits comma-separated tags, dropping blanks and duplicates.
func splitTags(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		t := strings.TrimSpace(part)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// URLCmd implements the url command.
type URLCmd struct{}

func (c *URLCmd) Name() string      { return "url" }
func (c *URLCmd) Aliases() []string { return nil }
func (c *URLCmd) Synopsis() string  { return "Print the file URL of an image" }
func (c *URLCmd) Usage() string     { return "gallery url <image-id>" }
func (c *URLCmd) NeedsStore() bool  { return true }

func (c *URLCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *URLCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	imageID, code := imageArg(args, errOut)
	if code != exitcode.Success {
		return code
	}
	img, err := svc.GetImage(ctx, imageID)
	if err != nil {
		return reportError(errOut, err)
	}
	fmt.Fprintln(out, svc.FileURL(img))
	return exitcode.Success
}
