// Package replay records the host events of a session with the frame they
// arrived on, so a run can be re-fired headless and end the same way.
//
// A replay file is a msgpack Header followed by one msgpack Record per event.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tui-platformer/internal/engine"
)

// Version is the file format version written by this package.
const Version = 1

// ErrBadFormat is returned when a replay cannot be decoded.
var ErrBadFormat = errors.New("replay: bad format")

// Header describes the run a replay was recorded from.
type Header struct {
	ID        string    `msgpack:"id"`
	Version   int       `msgpack:"version"`
	Scene     string    `msgpack:"scene"`
	Seed      int64     `msgpack:"seed"`
	FPS       int       `msgpack:"fps"`
	Player    string    `msgpack:"player,omitempty"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// Record is one host event and the frame number it was fired before.
type Record struct {
	Frame uint64  `msgpack:"f"`
	Kind  uint8   `msgpack:"k"`
	Key   string  `msgpack:"key,omitempty"`
	X     float64 `msgpack:"x,omitempty"`
	Y     float64 `msgpack:"y,omitempty"`
}

// NewRecord captures evt fired before frame.
func NewRecord(frame uint64, evt engine.GameEvent) Record {
	p := evt.Point()
	return Record{
		Frame: frame,
		Kind:  uint8(evt.Kind()),
		Key:   evt.Key(),
		X:     p.X,
		Y:     p.Y,
	}
}

// Event rebuilds the recorded event.
func (r Record) Event() (engine.GameEvent, error) {
	switch engine.EventKind(r.Kind) {
	case engine.EventKeyDown:
		return engine.NewKeyDown(r.Key), nil
	case engine.EventKeyUp:
		return engine.NewKeyUp(r.Key), nil
	case engine.EventPointerDown:
		return engine.NewPointerDown(r.X, r.Y), nil
	case engine.EventPointerClick:
		return engine.NewPointerClick(r.X, r.Y), nil
	case engine.EventPointerUp:
		return engine.NewPointerUp(r.X, r.Y), nil
	case engine.EventScenePointerClick:
		return engine.NewScenePointerClick(r.X, r.Y), nil
	}
	return engine.GameEvent{}, fmt.Errorf("%w: unknown event kind %d", ErrBadFormat, r.Kind)
}

// Writer appends records to a replay stream.
type Writer struct {
	enc    *msgpack.Encoder
	closer io.Closer
	header Header
	count  int
}

// NewWriter writes h to w and returns a writer for the records. An empty
// header ID is filled with a fresh ULID.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	if h.ID == "" {
		h.ID = ulid.Make().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	h.Version = Version

	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&h); err != nil {
		return nil, fmt.Errorf("replay: cannot write header: %w", err)
	}
	return &Writer{enc: enc, header: h}, nil
}

// Create creates the file at path and writes h to it.
func Create(path string, h Header) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot create %s: %w", path, err)
	}
	w, err := NewWriter(f, h)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Header returns the header as written.
func (w *Writer) Header() Header {
	return w.header
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Write appends evt fired before frame.
func (w *Writer) Write(frame uint64, evt engine.GameEvent) error {
	rec := NewRecord(frame, evt)
	if err := w.enc.Encode(&rec); err != nil {
		return fmt.Errorf("replay: cannot write record: %w", err)
	}
	w.count++
	return nil
}

// Close closes the underlying file when the writer was made by Create.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// ReadAll decodes a whole replay stream. Records must be in frame order.
func ReadAll(r io.Reader) (Header, []Record, error) {
	dec := msgpack.NewDecoder(r)

	var h Header
	if err := dec.Decode(&h); err != nil {
		return h, nil, fmt.Errorf("%w: header: %v", ErrBadFormat, err)
	}
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, h.Version)
	}
	if _, err := ulid.Parse(h.ID); err != nil {
		return h, nil, fmt.Errorf("%w: id %q: %v", ErrBadFormat, h.ID, err)
	}

	var records []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return h, nil, fmt.Errorf("%w: record %d: %v", ErrBadFormat, len(records), err)
		}
		if n := len(records); n > 0 && rec.Frame < records[n-1].Frame {
			return h, nil, fmt.Errorf("%w: record %d goes back to frame %d", ErrBadFormat, n, rec.Frame)
		}
		records = append(records, rec)
	}
	return h, records, nil
}

// Open reads the replay file at path.
func Open(path string) (Header, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("replay: cannot open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAll(f)
}

// Player re-fires records into a target frame by frame.
type Player struct {
	records []Record
	next    int
}

// NewPlayer creates a player over records sorted by frame.
func NewPlayer(records []Record) *Player {
	return &Player{records: records}
}

// Fire sends every record due before frame to fire, in recorded order.
func (p *Player) Fire(frame uint64, fire func(engine.GameEvent)) error {
	for p.next < len(p.records) && p.records[p.next].Frame <= frame {
		evt, err := p.records[p.next].Event()
		if err != nil {
			return err
		}
		p.next++
		fire(evt)
	}
	return nil
}

// Done reports whether every record has been fired.
func (p *Player) Done() bool {
	return p.next >= len(p.records)
}

// LastFrame returns the frame of the final record, or 0 for an empty replay.
func (p *Player) LastFrame() uint64 {
	if len(p.records) == 0 {
		return 0
	}
	return p.records[len(p.records)-1].Frame
}
