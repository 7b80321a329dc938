// internal/protocol/codec.go
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds one encoded message, newline excluded.
const MaxFrameSize = 64 * 1024

// ErrBadFrame is returned for a line that is not a valid envelope. The
// stream cannot be trusted after it, so readers treat it as a disconnect.
var ErrBadFrame = errors.New("malformed frame")

// Decoder reads newline-delimited envelopes.
type Decoder struct {
	sc *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxFrameSize+1)
	return &Decoder{sc: sc}
}

// Decode blocks for the next envelope. Blank lines are skipped.
// It returns io.EOF once the peer closes cleanly.
func (d *Decoder) Decode() (Message, error) {
	for d.sc.Scan() {
		line := bytes.TrimSpace(d.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return Message{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
		return msg, nil
	}
	if err := d.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Message{}, fmt.Errorf("%w: frame exceeds %d bytes", ErrBadFrame, MaxFrameSize)
		}
		return Message{}, err
	}
	return Message{}, io.EOF
}

// Encoder writes one envelope per line. It is not safe for concurrent use;
// each connection has a single writer goroutine.
type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes msg followed by a newline and flushes.
func (e *Encoder) Encode(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Method, err)
	}
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrBadFrame, msg.Method, len(data))
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}
