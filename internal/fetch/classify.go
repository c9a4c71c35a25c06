package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"google.golang.org/api/googleapi"

	"gallery/internal/service"
)

// Class groups fetch failures by how the controller reacts to them.
type Class int

const (
	// ClassPermanent failures are surfaced immediately.
	ClassPermanent Class = iota
	// ClassTransient failures are retried within the window.
	ClassTransient
	// ClassMalformed marks a response with an unexpected shape; not retried.
	ClassMalformed
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassMalformed:
		return "malformed"
	default:
		return "permanent"
	}
}

var transientPatterns = []string{
	"abort",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"failed to fetch",
}

// Classify decides whether err is worth retrying.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}
	if errors.Is(err, service.ErrMalformedResponse) {
		return ClassMalformed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 0, 408, 502, 503, 504:
			return ClassTransient
		default:
			return ClassPermanent
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ClassTransient
		}
	}
	return ClassPermanent
}
