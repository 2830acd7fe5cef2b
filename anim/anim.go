/*
Package anim implements the packed 32-bit animation word stored for each tile
in an archive.

The word is laid out as follows, least significant bit first:

	bits  0-5   frame range, the distance to the last tile of the animation
	bits  6-7   animation type
	bits  8-15  signed X center offset
	bits 16-23  signed Y center offset
	bits 24-27  animation speed
	bits 28-31  other flags

Values wider than their field are silently truncated, there is no validation
in the archive format itself.
*/
package anim

import (
	"fmt"
	"strings"
)

// Type is the animation type of a tile.
type Type uint8

// Animation types
const (
	None Type = iota
	Oscillation
	Forward
	Backward
)

var typeNames = [...]string{"none", "oscillation", "forward", "backward"}

func (t Type) String() string {
	return typeNames[t&3]
}

// ParseType returns the Type with the given name.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if s == n {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("anim: invalid animation type %q", s)
}

// Field identifies one of the sub-fields of a Word.
type Field uint8

// Fields of an animation word
const (
	Frames Field = 1 << iota
	AnimType
	XOffset
	YOffset
	Speed
	Flags

	// All selects every field
	All = Frames | AnimType | XOffset | YOffset | Speed | Flags
)

var fieldNames = map[Field]string{
	Frames:   "Frames",
	AnimType: "AnimationType",
	XOffset:  "XCenterOffset",
	YOffset:  "YCenterOffset",
	Speed:    "AnimationSpeed",
	Flags:    "OtherFlags",
}

func (f Field) String() string {
	var names []string
	for i := Frames; i <= Flags; i <<= 1 {
		if f&i != 0 {
			names = append(names, fieldNames[i])
		}
	}
	return strings.Join(names, "|")
}

type layout struct {
	shift uint
	mask  uint32
}

var layouts = map[Field]layout{
	Frames:   {0, 0x3f},
	AnimType: {6, 0x03},
	XOffset:  {8, 0xff},
	YOffset:  {16, 0xff},
	Speed:    {24, 0x0f},
	Flags:    {28, 0x0f},
}

// Word is a packed animation word.
type Word uint32

func (w Word) get(f Field) uint32 {
	l := layouts[f]
	return uint32(w) >> l.shift & l.mask
}

func (w Word) set(f Field, v uint32) Word {
	l := layouts[f]
	return w&^Word(l.mask<<l.shift) | Word(v&l.mask<<l.shift)
}

// Frames returns the frame range
func (w Word) Frames() uint8 { return uint8(w.get(Frames)) }

// Type returns the animation type
func (w Word) Type() Type { return Type(w.get(AnimType)) }

// XOffset returns the signed X center offset
func (w Word) XOffset() int8 { return int8(w.get(XOffset)) }

// YOffset returns the signed Y center offset
func (w Word) YOffset() int8 { return int8(w.get(YOffset)) }

// Speed returns the animation speed
func (w Word) Speed() uint8 { return uint8(w.get(Speed)) }

// Flags returns the other flags
func (w Word) Flags() uint8 { return uint8(w.get(Flags)) }

// Animated reports whether any of the cycle fields are set. The offsets and
// flags apply to a still tile as well.
func (w Word) Animated() bool {
	return w.Frames() != 0 || w.Type() != None || w.Speed() != 0
}

// Fields is the unpacked form of a Word. Values are held in plain integers so
// out of range input can be carried until it is encoded.
type Fields struct {
	Frames  int
	Type    Type
	XOffset int
	YOffset int
	Speed   int
	Flags   int
}

// Decode unpacks w.
func Decode(w Word) Fields {
	return Fields{
		Frames:  int(w.Frames()),
		Type:    w.Type(),
		XOffset: int(w.XOffset()),
		YOffset: int(w.YOffset()),
		Speed:   int(w.Speed()),
		Flags:   int(w.Flags()),
	}
}

func (f Fields) value(field Field) uint32 {
	switch field {
	case Frames:
		return uint32(f.Frames)
	case AnimType:
		return uint32(f.Type)
	case XOffset:
		return uint32(uint8(int8(f.XOffset)))
	case YOffset:
		return uint32(uint8(int8(f.YOffset)))
	case Speed:
		return uint32(f.Speed)
	case Flags:
		return uint32(f.Flags)
	}
	return 0
}

// Encode packs the fields selected by mask into base, leaving every other bit
// of base unchanged.
func Encode(f Fields, mask Field, base Word) Word {
	for i := Frames; i <= Flags; i <<= 1 {
		if mask&i != 0 {
			base = base.set(i, f.value(i))
		}
	}
	return base
}

// Patch updates a single field of a Word.
type Patch struct {
	Field Field
	Value int
}

// Apply returns w with the patch applied.
func (p Patch) Apply(w Word) Word {
	var f Fields
	switch p.Field {
	case Frames:
		f.Frames = p.Value
	case AnimType:
		f.Type = Type(p.Value)
	case XOffset:
		f.XOffset = p.Value
	case YOffset:
		f.YOffset = p.Value
	case Speed:
		f.Speed = p.Value
	case Flags:
		f.Flags = p.Value
	}
	return Encode(f, p.Field, w)
}

// Fold applies each patch in turn to base.
func Fold(base Word, patches ...Patch) Word {
	for _, p := range patches {
		base = p.Apply(base)
	}
	return base
}
