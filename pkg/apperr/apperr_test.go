package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("missing"), KindNotFound},
		{"gone", Gone("expired"), KindGone},
		{"forbidden", Forbidden("not yours"), KindForbidden},
		{"conflict", Conflict("duplicate"), KindConflict},
		{"internal", Internal("boom", errors.New("pg down")), KindInternal},
		{"unclassified", errors.New("anything"), KindInternal},
		{"wrapped", fmt.Errorf("handler: %w", Gone("expired")), KindGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "missing", Message(NotFound("missing")))
	assert.Equal(t, "internal server error", Message(errors.New("raw pg error")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "boom: pg down", Internal("boom", errors.New("pg down")).Error())
	assert.Equal(t, "bad input", Validation("bad input").Error())
}
