package bytecode

import (
	"encoding/binary"

	"github.com/mna/endpointvm/values"
)

// Constant tag bytes (spec §4.1, §6).
const (
	tagNull   byte = 0
	tagString byte = 1
	tagInt32  byte = 2
	tagBool   byte = 3
	tagList   byte = 4
	tagMap    byte = 5
)

// decodeConstantPool decodes count sequential top-level constants starting
// at off, returning the decoded values and the offset just past the last
// one.
func decodeConstantPool(b []byte, off int, count int) ([]values.Value, int, error) {
	out := make([]values.Value, count)
	for i := 0; i < count; i++ {
		v, next, err := decodeConstant(b, off, 0)
		if err != nil {
			return nil, 0, err
		}
		out[i] = v
		off = next
	}
	return out, off, nil
}

func decodeConstant(b []byte, off int, depth int) (values.Value, int, error) {
	if depth > MaxConstantDepth {
		return nil, 0, errAt(off, "constant nesting exceeds maximum depth %d", MaxConstantDepth)
	}
	if off >= len(b) {
		return nil, 0, errAt(off, "truncated constant (missing tag byte)")
	}
	tag := b[off]
	off++
	switch tag {
	case tagNull:
		return values.Null{}, off, nil
	case tagString:
		s, next, err := readString(b, off)
		if err != nil {
			return nil, 0, err
		}
		return values.String(s), next, nil
	case tagInt32:
		if off+4 > len(b) {
			return nil, 0, errAt(off, "truncated int32 constant")
		}
		n := int32(binary.BigEndian.Uint32(b[off : off+4]))
		return values.Int(n), off + 4, nil
	case tagBool:
		if off+1 > len(b) {
			return nil, 0, errAt(off, "truncated bool constant")
		}
		return values.Bool(b[off] != 0), off + 1, nil
	case tagList:
		if off+2 > len(b) {
			return nil, 0, errAt(off, "truncated list constant count")
		}
		n := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		elems := make([]values.Value, n)
		for i := 0; i < n; i++ {
			v, next, err := decodeConstant(b, off, depth+1)
			if err != nil {
				return nil, 0, err
			}
			elems[i] = v
			off = next
		}
		return values.NewList(elems), off, nil
	case tagMap:
		if off+2 > len(b) {
			return nil, 0, errAt(off, "truncated map constant count")
		}
		n := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		m := values.NewMap(n)
		for i := 0; i < n; i++ {
			key, next, err := readString(b, off)
			if err != nil {
				return nil, 0, err
			}
			off = next
			v, next, err := decodeConstant(b, off, depth+1)
			if err != nil {
				return nil, 0, err
			}
			off = next
			m.Set(key, v)
		}
		return m, off, nil
	default:
		return nil, 0, errAt(off-1, "unknown constant tag %d", tag)
	}
}

func encodeConstant(buf []byte, v values.Value) []byte {
	switch v := v.(type) {
	case nil, values.Null:
		return append(buf, tagNull)
	case values.String:
		buf = append(buf, tagString)
		return writeString(buf, string(v))
	case values.Int:
		buf = append(buf, tagInt32)
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(int32(v)))
		return append(buf, n[:]...)
	case values.Bool:
		buf = append(buf, tagBool)
		return append(buf, boolByte(bool(v)))
	case *values.List:
		buf = append(buf, tagList)
		elems := v.Elems()
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(elems)))
		buf = append(buf, n[:]...)
		for _, e := range elems {
			buf = encodeConstant(buf, e)
		}
		return buf
	case *values.Map:
		buf = append(buf, tagMap)
		keys := v.Keys()
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(keys)))
		buf = append(buf, n[:]...)
		for _, k := range keys {
			mv, _ := v.Get(k)
			buf = writeString(buf, k)
			buf = encodeConstant(buf, mv)
		}
		return buf
	default:
		// Unreachable for constants produced by decodeConstant or by a
		// well-behaved assembler; a Template never appears directly in the
		// constant pool (spec gap resolved in values/template.go).
		return append(buf, tagNull)
	}
}
