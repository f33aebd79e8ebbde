// Package rfp reads and writes recipes in the RFP3 binary file format.
//
// A file is an 18 byte header followed by chunks. The header holds the magic
// "RFP3", a version, the header size, the chunk count, flags and a reserved
// word, all little endian. Each chunk is a four letter type, a uint32 payload
// length and the payload, padded to a multiple of eight bytes. CORE carries the
// core properties, image path and name; every ingredient and every step gets
// its own INGR or STEP chunk. Strings are uint16 length prefixed.
package rfp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"cookbook/internal/recipes"
)

const (
	magic      = "RFP3"
	version    = 1
	headerSize = 18

	chunkCore       = "CORE"
	chunkIngredient = "INGR"
	chunkStep       = "STEP"

	// Extension is the conventional file suffix.
	Extension = ".rfp"
)

var (
	// ErrNotRFP is returned when the input does not start with the RFP3 magic.
	ErrNotRFP = errors.New("rfp: not an RFP3 file")
	// ErrTruncated is returned when a header, chunk or string runs past the
	// end of the input.
	ErrTruncated = errors.New("rfp: truncated file")
	// ErrTooLong is returned when a string does not fit a uint16 length.
	ErrTooLong = errors.New("rfp: string longer than 65535 bytes")
)

// Marshal encodes recipe as an RFP3 file. The recipe id is not stored.
func Marshal(recipe recipes.Recipe) ([]byte, error) {
	var chunks bytes.Buffer
	count := 0

	var core bytes.Buffer
	if len(recipe.CoreProps) > math.MaxUint16 {
		return nil, fmt.Errorf("rfp: %d core properties: %w", len(recipe.CoreProps), ErrTooLong)
	}
	binary.Write(&core, binary.LittleEndian, uint16(len(recipe.CoreProps)))
	for _, prop := range recipe.CoreProps {
		if err := writeString(&core, prop.Key); err != nil {
			return nil, err
		}
		if err := writeString(&core, prop.Value); err != nil {
			return nil, err
		}
	}
	if err := writeString(&core, recipe.ImagePath); err != nil {
		return nil, err
	}
	if err := writeString(&core, recipe.Name); err != nil {
		return nil, err
	}
	writeChunk(&chunks, chunkCore, core.Bytes())
	count++

	for _, ingredient := range recipe.Ingredients {
		var payload bytes.Buffer
		if err := writeString(&payload, ingredient); err != nil {
			return nil, err
		}
		writeChunk(&chunks, chunkIngredient, payload.Bytes())
		count++
	}

	for i, step := range recipe.Steps {
		var payload bytes.Buffer
		binary.Write(&payload, binary.LittleEndian, uint16(i+1))
		if err := writeString(&payload, step); err != nil {
			return nil, err
		}
		writeChunk(&chunks, chunkStep, payload.Bytes())
		count++
	}

	var out bytes.Buffer
	out.Grow(headerSize + chunks.Len())
	out.WriteString(magic)
	binary.Write(&out, binary.LittleEndian, uint16(version))
	binary.Write(&out, binary.LittleEndian, uint16(headerSize))
	binary.Write(&out, binary.LittleEndian, uint32(count))
	binary.Write(&out, binary.LittleEndian, uint16(0))
	binary.Write(&out, binary.LittleEndian, uint32(0))
	out.Write(chunks.Bytes())
	return out.Bytes(), nil
}

// Unmarshal decodes an RFP3 file. Unknown chunk types are skipped; steps are
// kept in file order.
func Unmarshal(data []byte) (recipes.Recipe, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return recipes.Recipe{}, ErrNotRFP
	}
	if len(data) < headerSize {
		return recipes.Recipe{}, ErrTruncated
	}
	count := binary.LittleEndian.Uint32(data[8:12])
	r := &reader{data: data, off: headerSize}

	var recipe recipes.Recipe
	for i := uint32(0); i < count; i++ {
		kind, payload, err := r.chunk()
		if err != nil {
			return recipes.Recipe{}, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		p := &reader{data: payload}
		switch kind {
		case chunkCore:
			if err := decodeCore(p, &recipe); err != nil {
				return recipes.Recipe{}, fmt.Errorf("chunk %d (%s): %w", i+1, kind, err)
			}
		case chunkIngredient:
			text, err := p.string()
			if err != nil {
				return recipes.Recipe{}, fmt.Errorf("chunk %d (%s): %w", i+1, kind, err)
			}
			recipe.Ingredients = append(recipe.Ingredients, text)
		case chunkStep:
			if _, err := p.uint16(); err != nil {
				return recipes.Recipe{}, fmt.Errorf("chunk %d (%s): %w", i+1, kind, err)
			}
			text, err := p.string()
			if err != nil {
				return recipes.Recipe{}, fmt.Errorf("chunk %d (%s): %w", i+1, kind, err)
			}
			recipe.Steps = append(recipe.Steps, text)
		}
	}
	return recipe, nil
}

// Read decodes an RFP3 file from r.
func Read(r io.Reader) (recipes.Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return recipes.Recipe{}, err
	}
	return Unmarshal(data)
}

// Write encodes recipe to w.
func Write(w io.Writer, recipe recipes.Recipe) error {
	data, err := Marshal(recipe)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func decodeCore(p *reader, recipe *recipes.Recipe) error {
	n, err := p.uint16()
	if err != nil {
		return err
	}
	props := make(recipes.Props, 0, n)
	for i := 0; i < int(n); i++ {
		key, err := p.string()
		if err != nil {
			return err
		}
		value, err := p.string()
		if err != nil {
			return err
		}
		props.Set(key, value)
	}
	if recipe.ImagePath, err = p.string(); err != nil {
		return err
	}
	if recipe.Name, err = p.string(); err != nil {
		return err
	}
	recipe.CoreProps = props
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return ErrTooLong
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
	return nil
}

func writeChunk(buf *bytes.Buffer, kind string, payload []byte) {
	buf.WriteString(kind)
	binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	buf.Write(make([]byte, padding(len(payload))))
}

func padding(n int) int {
	return (8 - n%8) % 8
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.off {
		return nil, ErrTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) string() (string, error) {
	n, err := r.uint16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) chunk() (string, []byte, error) {
	head, err := r.take(8)
	if err != nil {
		return "", nil, err
	}
	size := binary.LittleEndian.Uint32(head[4:8])
	if uint64(size) > uint64(len(r.data)-r.off) {
		return "", nil, ErrTruncated
	}
	payload, err := r.take(int(size))
	if err != nil {
		return "", nil, err
	}
	// The last chunk may omit its padding.
	skip := padding(int(size))
	if skip > len(r.data)-r.off {
		skip = len(r.data) - r.off
	}
	r.off += skip
	return string(head[:4]), payload, nil
}
