package apperr

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestMarks_SurviveWrapping(t *testing.T) {
	base := errors.New("dial tcp: connection refused")

	tests := []struct {
		err      error
		category error
		name     string
	}{
		{name: "transient", err: Transient(base, "fetch"), category: ErrTransientNetwork},
		{name: "authentication", err: Authentication(base, "validate"), category: ErrAuthentication},
		{name: "authorization", err: Authorization(base, "membership"), category: ErrAuthorization},
		{name: "unresolved", err: Unresolved(base, "resolve"), category: ErrConflictUnresolved},
		{name: "malformed", err: Malformed(base, "decode"), category: ErrMalformedMessage},
		{name: "persistence", err: Persistence(base, "save"), category: ErrPersistence},
		{name: "rejected", err: Rejected(base, "apply"), category: ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("sync cycle: %w", tt.err)
			assert.True(t, Is(wrapped, tt.category))
			assert.True(t, errors.Is(wrapped, base))
			assert.Contains(t, wrapped.Error(), "connection refused")
		})
	}
}

func TestMarks_DoNotLeakAcrossCategories(t *testing.T) {
	err := Transient(errors.New("timeout"), "fetch")

	assert.False(t, Is(err, ErrPersistence))
	assert.False(t, Is(err, ErrAuthentication))
}

func TestNilError(t *testing.T) {
	assert.NoError(t, Transient(nil, "noop"))
	assert.NoError(t, Persistence(nil, "noop"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Transient(errors.New("x"), "a")))
	assert.True(t, IsRetryable(Persistence(errors.New("x"), "a")))
	assert.False(t, IsRetryable(Rejected(errors.New("x"), "a")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestIsCategorized(t *testing.T) {
	assert.True(t, IsCategorized(fmt.Errorf("outer: %w", Authorization(errors.New("x"), "a"))))
	assert.False(t, IsCategorized(errors.New("plain")))
	assert.False(t, IsCategorized(nil))
}
