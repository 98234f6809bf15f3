package bridge

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console writes outbound messages to a local writer instead of a chat
// service. Used by the replay demo and for manual inspection.
type Console struct {
	mutex  sync.Mutex
	w      io.Writer
	nextID int
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Send(_ context.Context, chatID int64, text string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.nextID++
	fmt.Fprintf(c.w, "--- chat %d message %d ---\n%s\n", chatID, c.nextID, stripTags(text))
	return c.nextID, nil
}

func (c *Console) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintf(c.w, "--- chat %d edit %d ---\n%s\n", chatID, messageID, stripTags(text))
	return nil
}

var tagReplacer = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")

func stripTags(text string) string {
	return tagReplacer.Replace(text)
}
