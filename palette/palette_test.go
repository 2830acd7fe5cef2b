package palette

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPalette() []byte {
	b := make([]byte, Size)
	for i := 0; i < NumColors; i++ {
		b[i*3] = byte(i % 64)
		b[i*3+1] = byte((i + 1) % 64)
		b[i*3+2] = byte((i + 2) % 64)
	}
	return b
}

func TestLoadTruncated(t *testing.T) {
	_, err := Load(bytes.NewReader(make([]byte, Size-1)))
	assert.Equal(t, ErrTruncated, err)

	_, err = Load(bytes.NewReader(nil))
	assert.Equal(t, ErrTruncated, err)

	_, err = FromBytes(make([]byte, 10))
	assert.Equal(t, ErrTruncated, err)
}

func TestDisplayColor(t *testing.T) {
	p, err := Load(bytes.NewReader(rawPalette()))
	require.Nil(t, err)

	r, g, b := p.DisplayColor(10)
	assert.Equal(t, uint8(40), r)
	assert.Equal(t, uint8(44), g)
	assert.Equal(t, uint8(48), b)

	r, g, b = p.DisplayColor(63)
	assert.Equal(t, uint8(252), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(4), b)

	assert.Equal(t, Entry{10, 11, 12}, p.Entry(10))
}

func TestTransparentFallback(t *testing.T) {
	p, err := Load(bytes.NewReader(make([]byte, Size)))
	require.Nil(t, err)

	r, g, b := p.DisplayColor(Transparent)
	assert.Equal(t, [3]uint8{0, 247, 247}, [3]uint8{r, g, b})

	r, g, b = p.DisplayColor(0)
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})

	// The raw entry is untouched
	assert.Equal(t, Entry{}, p.Entry(Transparent))
}

func TestDisplayPalette(t *testing.T) {
	p, err := FromBytes(rawPalette())
	require.Nil(t, err)

	cp := p.Display()
	require.Len(t, cp, NumColors)
	assert.Equal(t, color.NRGBA{0, 0xf7, 0xf7, 0}, cp[Transparent])
	assert.Equal(t, color.NRGBA{40, 44, 48, 0xff}, cp[10])

	assert.Len(t, p.Opaque(), NumColors-1)
}

func TestMarshalBinary(t *testing.T) {
	raw := rawPalette()
	p, err := FromBytes(raw)
	require.Nil(t, err)

	b, err := p.MarshalBinary()
	require.Nil(t, err)
	assert.Equal(t, raw, b)

	var q Palette
	require.Nil(t, q.UnmarshalBinary(b))
	assert.Equal(t, *p, q)
}
