package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"gallery/internal/backend/pocketbase"
	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/service"
	"gallery/internal/telemetry"
)

// loginTimeout bounds the credential exchange.
const loginTimeout = 30 * time.Second

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email         string
	passwordStdin bool
	force         bool
	stdin         io.Reader
}

// SetStdin sets the reader used by --password-stdin (for testing).
func (c *LoginCmd) SetStdin(r io.Reader) {
	c.stdin = r
}

// SetEmail sets the login identity (for testing).
func (c *LoginCmd) SetEmail(email string) {
	c.email = email
	c.passwordStdin = true
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to the image store" }
func (c *LoginCmd) Usage() string {
	return "gallery login [common flags] [--force] --email <email> [--password-stdin]"
}
func (c *LoginCmd) NeedsStore() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if cfg.HasSession() && !c.force {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprintln(errOut, "error: email required (--email)")
		return exitcode.UserError
	}

	password, err := c.readPassword(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	httpClient := &http.Client{Transport: telemetry.Transport(nil)}
	token, err := pocketbase.AuthWithPassword(ctx, cfg.Server, httpClient, email, password)
	if err != nil {
		logger(cfg).Warn("login failed", zap.String("email", email), zap.Error(err))
		fmt.Fprintf(errOut, "error: login failed: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.SaveSession(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *LoginCmd) readPassword(errOut io.Writer) (string, error) {
	if c.passwordStdin {
		in := c.stdin
		if in == nil {
			in = os.Stdin
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", fmt.Errorf("password required")
		}
		return line, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password required (use --password-stdin)")
	}
	fmt.Fprint(errOut, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
