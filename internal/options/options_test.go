package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type target struct {
	name  string
	limit int
}

func TestApply(t *testing.T) {
	t.Run("InOrder", func(t *testing.T) {
		tgt := &target{}
		err := Apply(tgt,
			NoError(func(tg *target) { tg.name = "first" }),
			NoError(func(tg *target) { tg.name = "second" }),
			New(func(tg *target) error {
				tg.limit = 10
				return nil
			}),
		)
		require.NoError(t, err)
		require.Equal(t, "second", tgt.name)
		require.Equal(t, 10, tgt.limit)
	})

	t.Run("StopsAtFirstError", func(t *testing.T) {
		sentinel := errors.New("bad option")
		tgt := &target{}
		err := Apply(tgt,
			NoError(func(tg *target) { tg.limit = 1 }),
			New(func(*target) error { return sentinel }),
			NoError(func(tg *target) { tg.limit = 2 }),
		)
		require.ErrorIs(t, err, sentinel)
		require.Equal(t, 1, tgt.limit)
	})

	t.Run("NoOptions", func(t *testing.T) {
		require.NoError(t, Apply(&target{}))
	})
}
