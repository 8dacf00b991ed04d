// Command cotone ports cotone.c: a hard-realtime-style audio generator
// built from a coroutine that yields fixed-size buffers of samples using
// Switch alone, with no value ever passed through the mailbox. The child
// writes samples directly into a buffer shared with the parent through an
// ordinary Go pointer (no unsafe needed, since both sides are goroutines in
// the same address space) and calls Switch once the buffer is full; the
// parent's "callback" resumes the child once per buffer and otherwise never
// touches it.
//
// In place of an SDL playback callback, main drives the buffer-fill loop
// itself and appends each buffer to a WAV file, so the demo produces
// something to listen to without a hardware audio dependency.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"time"

	"github.com/rlcamp/coroutine"
	"github.com/rlcamp/coroutine/internal/corolog"
	"github.com/rlcamp/coroutine/internal/pacing"
)

const sampleRate = 11025

type audioGeneratorContext struct {
	sampleRate float64
	buffer     []float32
	cursor     int
}

func yieldSample(parent *coroutine.Channel, ctx *audioGeneratorContext, sample float32) {
	ctx.buffer[ctx.cursor] = sample
	ctx.cursor++

	if ctx.cursor == len(ctx.buffer) {
		parent.Switch()
	}
}

func tone(parent *coroutine.Channel, ctx *audioGeneratorContext, toneFrequency, duration float64) {
	carrier := complex(1, 0)
	advance := cmplx.Exp(complex(0, 2*math.Pi*toneFrequency/ctx.sampleRate))

	samples := int(duration * ctx.sampleRate)
	for i := 0; i < samples; i++ {
		yieldSample(parent, ctx, float32(imag(carrier)))

		carrier *= advance
		// renormalize the carrier, exploiting that 1/|x| ~= (3 - |x|^2) / 2 for |x| near 1
		magSquared := real(carrier)*real(carrier) + imag(carrier)*imag(carrier)
		carrier *= complex((3-magSquared)*0.5, 0)
	}
}

func silence(parent *coroutine.Channel, ctx *audioGeneratorContext, duration float64) {
	samples := int(duration * ctx.sampleRate)
	for i := 0; i < samples; i++ {
		yieldSample(parent, ctx, 0)
	}
}

// toneGenerator is the child coroutine body. Unlike a plain audio callback,
// it is not re-entered from the top on every buffer: its loop position,
// the tone being played, and the phase of the carrier all persist as
// ordinary local variables across each Switch. It runs a fixed number of
// tone/silence cycles and returns, so the demo terminates instead of
// generating audio forever like the SDL original.
func toneGenerator(parent *coroutine.Channel, arg any) {
	ctx := arg.(*audioGeneratorContext)
	for i := 0; i < 4; i++ {
		tone(parent, ctx, 2525.0, 0.249901)
		silence(parent, ctx, 0.5)
		tone(parent, ctx, 2475.0, 0.250101)
		silence(parent, ctx, 2.0)
	}
}

func main() {
	outPath := flag.String("out", "cotone.wav", "path to write the generated audio")
	bufferSize := flag.Int("buffer", 1024, "samples per callback buffer")
	flag.Parse()

	log := corolog.NewWriterLogger(corolog.LevelInfo, os.Stderr)
	limiter := pacing.NewLimiter(map[time.Duration]int{time.Second: 1})

	f, err := os.Create(*outPath)
	if err != nil {
		panic(fmt.Errorf("cotone: %w", err))
	}
	defer f.Close()

	var allSamples []float32
	ctx := &audioGeneratorContext{sampleRate: sampleRate}
	var child *coroutine.Channel

	for {
		ctx.buffer = make([]float32, *bufferSize)
		ctx.cursor = 0

		if child == nil {
			// creating the child runs it synchronously until its first
			// Switch, which already fills this buffer
			child = coroutine.Create(toneGenerator, ctx)
		} else if ctx.cursor != len(ctx.buffer) {
			// guard the context switch: if the child already terminated,
			// Switch silently no-ops rather than filling anything
			child.Switch()
		}

		allSamples = append(allSamples, ctx.buffer[:ctx.cursor]...)

		if limiter.Allow(time.Now()) {
			corolog.Info(log, "cotone", "filled buffer", map[string]any{"samples": len(allSamples)})
		}

		if child.State() == coroutine.TerminatedNotJoined {
			child.CloseAndJoin()
			break
		}
	}

	if err := writeWAV(f, sampleRate, allSamples); err != nil {
		panic(fmt.Errorf("cotone: %w", err))
	}
}

func writeWAV(f *os.File, rate int, samples []float32) error {
	const bitsPerSample = 16
	const numChannels = 1

	byteRate := rate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * 2

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return err
	}

	buf := make([]byte, 2)
	for _, s := range samples {
		clamped := s
		if clamped > 1 {
			clamped = 1
		} else if clamped < -1 {
			clamped = -1
		}
		binary.LittleEndian.PutUint16(buf, uint16(int16(clamped*32767)))
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
