// Package matfile reads numeric matrices from MATLAB level 5 MAT-files.
//
// Only what gaze recordings need is decoded: real 2-D numeric arrays, plain
// or zlib compressed. Other array classes are kept by name so asking for them
// reports ErrUnsupported instead of ErrNotFound.
package matfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zlib"
)

const headerSize = 128

// data types
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
)

// array classes
const (
	mxDOUBLE = 6
	mxUINT64 = 15

	flagComplex = 0x0800
)

var (
	ErrNotFound    = errors.New("variable not found")
	ErrUnsupported = errors.New("unsupported array")
	ErrFormat      = errors.New("not a level 5 MAT-file")
)

// Matrix is a real 2-D array stored column-major like MATLAB does.
type Matrix struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

func (m *Matrix) At(i, j int) float64 {
	return m.Data[j*m.Rows+i]
}

// T returns the transposed copy.
func (m *Matrix) T() *Matrix {
	t := &Matrix{Name: m.Name, Rows: m.Cols, Cols: m.Rows, Data: make([]float64, len(m.Data))}
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			t.Data[i*t.Rows+j] = m.At(i, j)
		}
	}
	return t
}

// Row copies row i out of the column-major storage.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.Cols)
	for j := range row {
		row[j] = m.At(i, j)
	}
	return row
}

type File struct {
	Header string
	vars   map[string]*Matrix
	// names of arrays present but not decodable
	skipped map[string]string
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Read(r io.Reader) (*File, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: file too short", ErrFormat)
	}
	var order binary.ByteOrder
	switch string(buf[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad endian indicator %q", ErrFormat, buf[126:128])
	}
	if v := order.Uint16(buf[124:126]); v != 0x0100 {
		return nil, fmt.Errorf("%w: version %#x", ErrFormat, v)
	}

	f := &File{
		Header:  string(bytes.TrimRight(buf[:116], " \x00")),
		vars:    map[string]*Matrix{},
		skipped: map[string]string{},
	}
	p := &parser{order: order}
	if err := p.elements(buf[headerSize:], f); err != nil {
		return nil, err
	}
	return f, nil
}

// Var returns the named matrix.
func (f *File) Var(name string) (*Matrix, error) {
	if m, ok := f.vars[name]; ok {
		return m, nil
	}
	if why, ok := f.skipped[name]; ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupported, name, why)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Names lists decoded variables.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.vars))
	for n := range f.vars {
		names = append(names, n)
	}
	return names
}

type parser struct {
	order binary.ByteOrder
}

type tag struct {
	typ   uint32
	size  int
	small bool
}

// readTag decodes either the regular 8 byte tag or the packed small element form.
func (p *parser) readTag(b []byte) (tag, error) {
	if len(b) < 8 {
		return tag{}, fmt.Errorf("%w: truncated tag", ErrFormat)
	}
	first := p.order.Uint32(b[0:4])
	if hi := first >> 16; hi != 0 {
		return tag{typ: first & 0xFFFF, size: int(hi), small: true}, nil
	}
	return tag{typ: first, size: int(p.order.Uint32(b[4:8]))}, nil
}

// next splits one element off b, returning its tag, payload and the remainder.
func (p *parser) next(b []byte) (tag, []byte, []byte, error) {
	t, err := p.readTag(b)
	if err != nil {
		return t, nil, nil, err
	}
	if t.small {
		if t.size > 4 {
			return t, nil, nil, fmt.Errorf("%w: small element of %d bytes", ErrFormat, t.size)
		}
		return t, b[4 : 4+t.size], b[8:], nil
	}
	end := 8 + t.size
	if end > len(b) {
		return t, nil, nil, fmt.Errorf("%w: element of %d bytes overruns file", ErrFormat, t.size)
	}
	payload := b[8:end]
	// compressed elements are not padded
	if t.typ != miCOMPRESSED {
		if pad := t.size % 8; pad != 0 {
			end += 8 - pad
		}
		if end > len(b) {
			end = len(b)
		}
	}
	return t, payload, b[end:], nil
}

func (p *parser) elements(b []byte, f *File) error {
	for len(b) > 0 {
		t, payload, rest, err := p.next(b)
		if err != nil {
			return err
		}
		b = rest
		switch t.typ {
		case miCOMPRESSED:
			inflated, err := inflate(payload)
			if err != nil {
				return fmt.Errorf("Cannot inflate compressed element: %w", err)
			}
			if err := p.elements(inflated, f); err != nil {
				return err
			}
		case miMATRIX:
			if err := p.matrix(payload, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// matrix decodes an miMATRIX payload: flags, dimensions, name, real part.
func (p *parser) matrix(b []byte, f *File) error {
	// empty placeholder arrays carry no subelements
	if len(b) == 0 {
		return nil
	}
	t, flags, b, err := p.next(b)
	if err != nil {
		return err
	}
	if t.typ != miUINT32 || len(flags) < 8 {
		return fmt.Errorf("%w: bad array flags", ErrFormat)
	}
	word := p.order.Uint32(flags[0:4])
	class := word & 0xFF

	_, dimsRaw, b, err := p.next(b)
	if err != nil {
		return err
	}
	dims := make([]int, len(dimsRaw)/4)
	for i := range dims {
		dims[i] = int(int32(p.order.Uint32(dimsRaw[i*4:])))
	}

	_, nameRaw, b, err := p.next(b)
	if err != nil {
		return err
	}
	name := string(nameRaw)

	switch {
	case class < mxDOUBLE || class > mxUINT64:
		f.skipped[name] = fmt.Sprintf("array class %d", class)
		return nil
	case word&flagComplex != 0:
		f.skipped[name] = "complex"
		return nil
	case len(dims) != 2:
		f.skipped[name] = fmt.Sprintf("%d-dimensional", len(dims))
		return nil
	}

	t, values, _, err := p.next(b)
	if err != nil {
		return err
	}
	data, err := p.numbers(t.typ, values)
	if err != nil {
		return fmt.Errorf("Variable %s: %w", name, err)
	}
	if len(data) != dims[0]*dims[1] {
		return fmt.Errorf("%w: %s has %d values for %dx%d", ErrFormat, name, len(data), dims[0], dims[1])
	}
	f.vars[name] = &Matrix{Name: name, Rows: dims[0], Cols: dims[1], Data: data}
	return nil
}

// numbers widens any numeric storage type to float64; MATLAB stores doubles
// in the narrowest type that holds them exactly.
func (p *parser) numbers(typ uint32, b []byte) ([]float64, error) {
	var width int
	var conv func([]byte) float64
	switch typ {
	case miINT8:
		width, conv = 1, func(b []byte) float64 { return float64(int8(b[0])) }
	case miUINT8:
		width, conv = 1, func(b []byte) float64 { return float64(b[0]) }
	case miINT16:
		width, conv = 2, func(b []byte) float64 { return float64(int16(p.order.Uint16(b))) }
	case miUINT16:
		width, conv = 2, func(b []byte) float64 { return float64(p.order.Uint16(b)) }
	case miINT32:
		width, conv = 4, func(b []byte) float64 { return float64(int32(p.order.Uint32(b))) }
	case miUINT32:
		width, conv = 4, func(b []byte) float64 { return float64(p.order.Uint32(b)) }
	case miSINGLE:
		width, conv = 4, func(b []byte) float64 { return float64(math.Float32frombits(p.order.Uint32(b))) }
	case miDOUBLE:
		width, conv = 8, func(b []byte) float64 { return math.Float64frombits(p.order.Uint64(b)) }
	case miINT64:
		width, conv = 8, func(b []byte) float64 { return float64(int64(p.order.Uint64(b))) }
	case miUINT64:
		width, conv = 8, func(b []byte) float64 { return float64(p.order.Uint64(b)) }
	default:
		return nil, fmt.Errorf("%w: data type %d", ErrUnsupported, typ)
	}
	out := make([]float64, len(b)/width)
	for i := range out {
		out[i] = conv(b[i*width:])
	}
	return out, nil
}
