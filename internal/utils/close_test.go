package utils

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseLogged(t *testing.T) {
	for _, c := range []*closer{{}, {err: errors.New("boom")}} {
		CloseLogged(c, "test", logger.Nop())
		if !c.closed {
			t.Errorf("CloseLogged did not close the resource")
		}
	}
}
