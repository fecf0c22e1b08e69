package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[*AppError]int{
		InvalidInput("bad"):        http.StatusBadRequest,
		NotFound("missing"):        http.StatusNotFound,
		Conflict("taken"):          http.StatusConflict,
		Gone("expired"):            http.StatusGone,
		Internal(nil, "boom"):      http.StatusInternalServerError,
		New("SOMETHING_ELSE", "x"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.Status(), err.Code)
	}
}

func TestFromAndHasCode(t *testing.T) {
	wrapped := fmt.Errorf("create link: %w", Conflict("This name is already taken"))

	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.True(t, errors.Is(wrapped, Conflict("")))
	assert.Equal(t, CodeConflict, From(wrapped).Code)

	plain := errors.New("driver: bad connection")
	got := From(plain)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, plain)
	assert.False(t, HasCode(plain, CodeNotFound))
}
