// Package replay records and verifies deterministic runs. A replay file
// is zstd-compressed JSON lines: one header record, then one record per
// tick carrying the applied events and the post-tick state digest.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/world"
	"hamletworks/internal/sim/worldgen"
)

const Version = 1

// Header is the first record of every replay file.
type Header struct {
	Version       int               `json:"version"`
	Seed          int64             `json:"seed"`
	TPS           int               `json:"tps"`
	MapGen        content.MapGenDef `json:"mapgen"`
	ContentDigest string            `json:"content_digest"`
}

// Record is one simulated tick.
type Record struct {
	Tick   uint64            `json:"tick"`
	Events []json.RawMessage `json:"events,omitempty"`
	Digest string            `json:"digest"`
}

// Writer streams tick records to a replay file. It implements the
// world's tick sink.
type Writer struct {
	f   *os.File
	zw  *zstd.Encoder
	enc *json.Encoder
}

// Create opens a replay file and writes the header.
func Create(path string, hdr Header) (*Writer, error) {
	hdr.Version = Version
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create replay: %w", err)
	}
	w := &Writer{f: f, zw: zw, enc: json.NewEncoder(zw)}
	if err := w.enc.Encode(hdr); err != nil {
		w.Close()
		return nil, fmt.Errorf("write replay header: %w", err)
	}
	return w, nil
}

// Append records one tick. Raw event bytes pass through untouched so a
// verify run replays byte-identical input.
func (w *Writer) Append(tick uint64, events [][]byte, digest string) error {
	rec := Record{Tick: tick, Digest: digest}
	for _, e := range events {
		rec.Events = append(rec.Events, json.RawMessage(e))
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write replay record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	zerr := w.zw.Close()
	ferr := w.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// Reader iterates a replay file.
type Reader struct {
	f      *os.File
	zr     *zstd.Decoder
	sc     *bufio.Scanner
	Header Header
}

// Open reads and checks the header, leaving the reader positioned at the
// first tick record.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open replay: %w", err)
	}
	sc := bufio.NewScanner(zr)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	r := &Reader{f: f, zr: zr, sc: sc}
	if !sc.Scan() {
		r.Close()
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read replay header: %w", err)
		}
		return nil, errors.New("replay file is empty")
	}
	if err := json.Unmarshal(sc.Bytes(), &r.Header); err != nil {
		r.Close()
		return nil, fmt.Errorf("decode replay header: %w", err)
	}
	if r.Header.Version != Version {
		r.Close()
		return nil, fmt.Errorf("replay version %d not supported (want %d)", r.Header.Version, Version)
	}
	return r, nil
}

// Next returns the following tick record, or io.EOF.
func (r *Reader) Next() (Record, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Record{}, fmt.Errorf("read replay record: %w", err)
		}
		return Record{}, io.EOF
	}
	var rec Record
	if err := json.Unmarshal(r.sc.Bytes(), &rec); err != nil {
		return Record{}, fmt.Errorf("decode replay record: %w", err)
	}
	return rec, nil
}

func (r *Reader) Close() error {
	r.zr.Close()
	return r.f.Close()
}

// MismatchError reports the first tick whose recomputed digest diverged
// from the recorded one.
type MismatchError struct {
	Tick     uint64
	Recorded string
	Computed string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("digest mismatch at tick %d: recorded %s, computed %s",
		e.Tick, e.Recorded, e.Computed)
}

// Verify re-simulates a replay against the given content set and checks
// every recorded digest. It returns the number of verified ticks.
func Verify(path string, set *content.Set) (uint64, error) {
	r, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	if r.Header.ContentDigest != set.Digest {
		return 0, fmt.Errorf("replay was recorded with content digest %s, loaded content has %s",
			r.Header.ContentDigest, set.Digest)
	}

	g := worldgen.Generate(r.Header.MapGen, r.Header.Seed)
	w := world.New(world.Config{Seed: r.Header.Seed, TPS: r.Header.TPS}, set, g)

	var ticks uint64
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return ticks, nil
		}
		if err != nil {
			return ticks, err
		}
		if rec.Tick != w.CurrentTick() {
			return ticks, fmt.Errorf("replay skips from tick %d to %d", w.CurrentTick(), rec.Tick)
		}
		events := make([][]byte, len(rec.Events))
		for i, e := range rec.Events {
			events[i] = []byte(e)
		}
		res, err := w.Step(events)
		if err != nil {
			return ticks, err
		}
		if res.Digest != rec.Digest {
			return ticks, &MismatchError{Tick: rec.Tick, Recorded: rec.Digest, Computed: res.Digest}
		}
		ticks++
	}
}
