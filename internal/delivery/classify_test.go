package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{"nil error", nil, ClassUnclassified},
		{"context deadline", context.DeadlineExceeded, ClassTimeout},
		{"wrapped deadline", fmt.Errorf("request failed: %w", context.DeadlineExceeded), ClassTimeout},
		{"timeout text", errors.New("client timeout awaiting response"), ClassTimeout},
		{"aborted text", errors.New("request aborted by peer"), ClassTimeout},
		{"duplicate text", errors.New("ERROR: duplicate key value"), ClassDuplicate},
		{"unique constraint", errors.New("UNIQUE constraint failed: messages.id"), ClassDuplicate},
		{"already exists", errors.New("chat id already exists"), ClassDuplicate},
		{"connection reset", errors.New("read tcp: connection reset by peer"), ClassConnectionReset},
		{"empty response", fmt.Errorf("%w: empty response body", ErrMalformedResponse), ClassEmptyResponse},
		{"dns failure", errors.New("dial tcp: lookup webhook.example: no such host"), ClassNetwork},
		{"connection refused", errors.New("dial tcp 127.0.0.1:9: connection refused"), ClassNetwork},
		{"unknown", errors.New("something odd happened"), ClassUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFailureClass_RotatesChatID(t *testing.T) {
	assert.True(t, ClassTimeout.RotatesChatID())
	assert.True(t, ClassDuplicate.RotatesChatID())
	assert.False(t, ClassNetwork.RotatesChatID())
	assert.False(t, ClassConnectionReset.RotatesChatID())
	assert.False(t, ClassEmptyResponse.RotatesChatID())
	assert.False(t, ClassUnclassified.RotatesChatID())
}

func TestFailureClass_String(t *testing.T) {
	assert.Equal(t, "empty-response", ClassEmptyResponse.String())
	assert.Equal(t, "timeout", ClassTimeout.String())
	assert.Equal(t, "network", ClassNetwork.String())
	assert.Equal(t, "connection-reset", ClassConnectionReset.String())
	assert.Equal(t, "unclassified", ClassUnclassified.String())
}
