// Package lineinput provides line-buffered byte input: bytes are handed out
// of an internal buffer that is refilled one whole line at a time.
package lineinput

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Location names a line in an Input stream.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer holding its content.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il *Line) String() string     { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential byte reading through a Queue of one or more
// input streams. Scan holds the line currently being consumed and Last the
// one before it, to facilitate user feedback.
type Input struct {
	// Refill, if set, is called before blocking to read another line, e.g. to
	// flush a prompt written to some output.
	Refill func() error

	Queue []io.Reader
	Last  Line
	Scan  Line

	br   *bufio.Reader
	loc  Location
	read int
}

// ReadByte returns the next buffered byte, reading one more line when the
// buffer is exhausted. Returns io.EOF once every queued stream is.
func (in *Input) ReadByte() (byte, error) {
	if in.read >= in.Scan.Len() {
		if err := in.nextLine(); err != nil {
			return 0, err
		}
	}
	b := in.Scan.Bytes()[in.read]
	in.read++
	return b, nil
}

// Buffered returns how many bytes may be read without reading another line.
func (in *Input) Buffered() int { return in.Scan.Len() - in.read }

func (in *Input) nextLine() error {
	if in.Refill != nil {
		if err := in.Refill(); err != nil {
			return err
		}
	}

	for {
		if in.br == nil && !in.nextIn() {
			return io.EOF
		}

		line, err := in.br.ReadBytes('\n')
		if len(line) > 0 {
			in.loc.Line++
			in.rollLine(line)
			return nil
		}
		if errors.Is(err, io.EOF) {
			in.br = nil
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (in *Input) rollLine(line []byte) {
	in.Last.Reset()
	in.Last.Location = in.Scan.Location
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Location = in.loc
	in.Scan.Write(line)
	in.read = 0
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	if br, ok := r.(*bufio.Reader); ok {
		in.br = br
	} else {
		in.br = bufio.NewReader(r)
	}
	in.loc = Location{Name: nameOf(r)}
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

// NamedReader attaches a Name to a reader, for use in Locations.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }
