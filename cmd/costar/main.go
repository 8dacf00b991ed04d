// Command costar ports the star_network demo: a parent coroutine brokers
// messages between two independent child channels, relaying a message from
// the first child into the second child's mailbox whenever it is addressed
// to it. It demonstrates that sibling channels never interfere with one
// another's mailbox: the first child's slot and the second child's slot are
// fields of two entirely distinct *coroutine.Channel values.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rlcamp/coroutine"
	"github.com/rlcamp/coroutine/internal/corolog"
)

func starNetworkFirstChild(parent *coroutine.Channel, _ any) {
	parent.YieldTo("message for second child: hi")
	parent.YieldTo("message for parent: hello")
}

func starNetworkSecondChild(parent *coroutine.Channel, _ any) {
	for message := parent.From(); message != nil; message = parent.From() {
		fmt.Fprintf(os.Stdout, "second child: got message: %s\n", message.(string))
	}
}

func main() {
	log := corolog.NewWriterLogger(corolog.LevelInfo, os.Stderr)

	firstChild := coroutine.Create(starNetworkFirstChild, nil)
	secondChild := coroutine.Create(starNetworkSecondChild, nil)

	for message := firstChild.From(); message != nil; message = firstChild.From() {
		text := message.(string)
		fmt.Fprintf(os.Stdout, "parent: from first child: %s\n", text)

		const marker = "for second child: "
		if idx := strings.Index(text, marker); idx >= 0 {
			relay := text[idx+len(marker):]
			corolog.Info(log, "costar", "relaying message to second child", map[string]any{"message": relay})
			secondChild.YieldTo(relay)
		}
	}

	secondChild.CloseAndJoin()
}
