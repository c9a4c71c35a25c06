package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"gallery/internal/config"
	"gallery/internal/exitcode"
	"gallery/internal/fetch"
	"gallery/internal/service"
)

// stringsFlag collects a repeatable flag.
type stringsFlag []string

func (s *stringsFlag) String() string { return strings.Join(*s, ",") }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// reportError prints err in the CLI's error format and returns the exit code.
func reportError(errOut io.Writer, err error) int {
	code := exitcode.ForError(err)
	switch {
	case code == exitcode.Interrupted:
		fmt.Fprintln(errOut, "error: interrupted")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: %v\n", err)
	case errors.Is(err, service.ErrMalformedResponse):
		fmt.Fprintf(errOut, "error: %s\n", fetch.MsgMalformed)
	case code == exitcode.Unreachable:
		fmt.Fprintf(errOut, "error: %s\n", fetch.MsgUnreachable)
	case code == exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %v (run: gallery login)\n", err)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}

// joinArgs joins positional args into a single trimmed name.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// query runs one fetch cycle with the configured timings and waits for it.
func query(ctx context.Context, cfg *config.Config, svc service.Service, q string) (fetch.Snapshot, error) {
	opts := cfg.Fetch
	opts.Logger = cfg.Logger
	c := fetch.New(fetch.StoreFunc(svc), opts)
	defer c.Close()

	c.Search(q)
	snap, err := c.Wait(ctx)
	if err != nil {
		return snap, err
	}
	if snap.State == fetch.StateError {
		return snap, snap.Err
	}
	return snap, nil
}

// resolveListIDs maps list names to IDs.
func resolveListIDs(lists []service.List, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		l, err := service.FindList(lists, n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, l.ID)
	}
	return ids, nil
}

// logger returns cfg.Logger, or a no-op logger when unset.
func logger(cfg *config.Config) *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}
