// Command comorse is a direct port of the original comorse.c demo: a
// generator coroutine walks a sentence, yielding one Morse "pixel" at a
// time (a space or a '-' rune; a dot is one '-' pixel, a dash three);
// main drains it with From until
// termination, printing each pixel as it arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/rlcamp/coroutine"
	"github.com/rlcamp/coroutine/internal/drain"
)

var morseTable = map[rune]string{
	' ':  "      ",
	'A':  " - ---  ",
	'B':  " --- - - -  ",
	'C':  " --- - --- -  ",
	'D':  " --- - -  ",
	'E':  " -  ",
	'F':  " - - --- -  ",
	'G':  " --- --- -  ",
	'H':  " - - - -  ",
	'I':  " - -  ",
	'J':  " --- --- --- -  ",
	'K':  " --- - ---  ",
	'L':  " - --- - -  ",
	'M':  " --- ---  ",
	'N':  " --- -  ",
	'O':  " --- --- ---  ",
	'P':  " - --- --- -  ",
	'Q':  " --- --- - ---  ",
	'R':  " - --- -  ",
	'S':  " - - -  ",
	'T':  " ---  ",
	'U':  " - - ---  ",
	'V':  " - - - ---  ",
	'W':  " - --- ---  ",
	'X':  " --- - - ---  ",
	'Y':  " --- - --- ---  ",
	'Z':  " --- --- - -  ",
	'1':  " - --- --- --- ---  ",
	'2':  " - - --- --- ---  ",
	'3':  " - - - --- ---  ",
	'4':  " - - - - ---  ",
	'5':  " - - - - -  ",
	'6':  " --- - - - -  ",
	'7':  " --- --- - - -  ",
	'8':  " --- --- --- - -  ",
	'9':  " --- --- --- --- -  ",
	'0':  " --- --- --- --- ---  ",
	'+':  " - --- - --- -  ",
	'-':  " --- - - - - ---  ",
	'?':  " - - --- --- - -  ",
	'/':  " --- - - --- -  ",
	'.':  " - --- - --- - ---  ",
	',':  " --- --- - - --- ---  ",
	'\'': " --- - - --- -  ",
	')':  " --- - --- --- - ---  ",
	'(':  " --- - --- --- -  ",
	':':  " --- --- --- - - -  ",
}

// morseGenerator is the coroutine body: a simple demonstration of the
// benefit of a generator function for producing samples that depend on
// internal loop state. Written as a callback instead, this loop would
// have to be turned inside-out, with the loop position stored externally.
func morseGenerator(parent *coroutine.Channel, sentence any) {
	for _, letter := range sentence.(string) {
		pixels, ok := morseTable[unicode.ToUpper(letter)]
		if !ok {
			pixels = morseTable[' ']
		}
		for _, pixel := range pixels {
			parent.YieldTo(string(pixel))
		}
	}
	// generators implicitly yield the close token when they return, as
	// observed by a parent blocked in From.
}

func main() {
	batchMode := flag.Bool("batch", false, "drain output through internal/drain instead of one pixel at a time")
	flag.Parse()

	sentence := "test"
	if flag.NArg() > 0 {
		sentence = strings.Join(flag.Args(), " ")
	}

	child := coroutine.Create(morseGenerator, sentence)

	var out strings.Builder
	if *batchMode {
		runBatched(child, &out)
	} else {
		for pixel := child.From(); pixel != nil; pixel = child.From() {
			out.WriteString(pixel.(string))
		}
	}

	fmt.Fprintln(os.Stdout, out.String())
}

// runBatched bridges the generator's From loop into an ordinary Go
// channel, then drains it through internal/drain — demonstrating how a
// coroutine's synchronous output can feed a consumer that would rather
// process a handful of values per call.
func runBatched(child *coroutine.Channel, out *strings.Builder) {
	relay := make(chan string)
	go func() {
		defer close(relay)
		for pixel := child.From(); pixel != nil; pixel = child.From() {
			relay <- pixel.(string)
		}
	}()

	ctx := context.Background()
	cfg := &drain.Config{MaxSize: 8}
	for {
		batch, err := drain.Batch(ctx, cfg, relay)
		for _, pixel := range batch {
			out.WriteString(pixel)
		}
		if err != nil {
			return
		}
	}
}
