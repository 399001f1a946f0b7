package gossip

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Wire frames exchanged between neighbors. Every frame is a 4-byte
// big-endian length prefix followed by a JSON body with a "type"
// discriminant.
const (
	frameJoin  = "join"
	framePeers = "peers"
	frameData  = "data"

	// MaxFrameSize bounds a single frame body.
	MaxFrameSize = 1 << 20

	// maxHops bounds epidemic relay depth.
	maxHops = 16
)

type frame struct {
	Type  string `json:"type"`
	Topic Topic  `json:"topic"`

	// From describes the sending neighbor on join frames and the original
	// author on data frames.
	From AddrInfo `json:"from"`

	// ID de-duplicates data frames across mesh paths.
	ID      string `json:"id,omitempty"`
	Hops    int    `json:"hops,omitempty"`
	Payload []byte `json:"payload,omitempty"`

	// Peers carries the sender's neighbor list on peers frames.
	Peers []AddrInfo `json:"peers,omitempty"`
}

func writeFrame(w io.Writer, f frame) error {
	body, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", len(body))
	}
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)

	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("short write")
		}
		total += n
	}
	return nil
}

func readFrame(r io.Reader) (frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return frame{}, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > MaxFrameSize {
		return frame{}, fmt.Errorf("invalid frame size: %d", n)
	}

	body := make([]byte, int(n))
	if _, err := io.ReadFull(r, body); err != nil {
		return frame{}, err
	}

	var f frame
	if err := json.Unmarshal(body, &f); err != nil {
		return frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return f, nil
}
