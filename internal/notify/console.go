package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"jobalert/internal/digest"
)

// Console writes the plain-text digest to w (stdout by default).
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Notify(_ context.Context, d digest.Digest) error {
	_, err := fmt.Fprintf(c.w, "%s\n\n%s", d.Subject, d.Text)
	return err
}
