package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"gallery/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"refused", errRefused, ClassTransient},
		{"wrapped refused", fmt.Errorf("list images: %w", errRefused), ClassTransient},
		{"deadline", context.DeadlineExceeded, ClassTransient},
		{"canceled", context.Canceled, ClassTransient},
		{"unexpected eof", io.ErrUnexpectedEOF, ClassTransient},
		{"malformed", fmt.Errorf("decode: %w", service.ErrMalformedResponse), ClassMalformed},
		{"bad gateway", &googleapi.Error{Code: 502}, ClassTransient},
		{"unavailable", &googleapi.Error{Code: 503}, ClassTransient},
		{"forbidden status", &googleapi.Error{Code: 403, Message: "timeout"}, ClassPermanent},
		{"bad request", &googleapi.Error{Code: 400}, ClassPermanent},
		{"pattern", errors.New("request aborted by client"), ClassTransient},
		{"failed to fetch", errors.New("TypeError: Failed to fetch"), ClassTransient},
		{"other", errors.New("forbidden"), ClassPermanent},
		{"nil", nil, ClassPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "transient", ClassTransient.String())
	assert.Equal(t, "malformed", ClassMalformed.String())
	assert.Equal(t, "permanent", ClassPermanent.String())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "stable", StateStable.String())
	assert.Equal(t, "error", StateError.String())
}
