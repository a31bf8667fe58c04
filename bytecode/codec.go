package bytecode

import (
	"encoding/binary"

	"golang.org/x/exp/slices"

	"github.com/mna/endpointvm/functions"
	"github.com/mna/endpointvm/values"
)

// Magic and version constants for the binary container (spec §4.1, §6).
const (
	Magic       uint32 = 0x52554C45 // "RULE"
	Version     uint16 = 0x0101
	headerSize         = 44
	offsetSize         = 4
	bddNodeSize        = 12
)

type header struct {
	version           uint16
	conditionCount    uint16
	resultCount       uint16
	registerCount     uint16
	constantCount     uint16
	functionCount     uint16
	bddNodeCount      uint32
	bddRoot           int32
	conditionTableOff uint32
	resultTableOff    uint32
	functionTableOff  uint32
	constantPoolOff   uint32
	bddTableOff       uint32
}

func decodeHeader(b []byte) (header, error) {
	var h header
	if len(b) < headerSize {
		return h, errf("container too short for header: %d bytes", len(b))
	}
	magic := binary.BigEndian.Uint32(b[0:4])
	if magic != Magic {
		return h, errAt(0, "bad magic %#08x, want %#08x", magic, Magic)
	}
	h.version = binary.BigEndian.Uint16(b[4:6])
	if h.version > Version {
		return h, errAt(4, "unsupported version %#04x", h.version)
	}
	h.conditionCount = binary.BigEndian.Uint16(b[6:8])
	h.resultCount = binary.BigEndian.Uint16(b[8:10])
	h.registerCount = binary.BigEndian.Uint16(b[10:12])
	h.constantCount = binary.BigEndian.Uint16(b[12:14])
	h.functionCount = binary.BigEndian.Uint16(b[14:16])
	h.bddNodeCount = binary.BigEndian.Uint32(b[16:20])
	h.bddRoot = int32(binary.BigEndian.Uint32(b[20:24]))
	h.conditionTableOff = binary.BigEndian.Uint32(b[24:28])
	h.resultTableOff = binary.BigEndian.Uint32(b[28:32])
	h.functionTableOff = binary.BigEndian.Uint32(b[32:36])
	h.constantPoolOff = binary.BigEndian.Uint32(b[36:40])
	h.bddTableOff = binary.BigEndian.Uint32(b[40:44])

	offs := []uint32{h.conditionTableOff, h.resultTableOff, h.functionTableOff, h.bddTableOff, h.constantPoolOff}
	for i := 1; i < len(offs); i++ {
		if offs[i] < offs[i-1] {
			return h, errf("section offsets are not monotonically non-decreasing: %v", offs)
		}
	}
	if int(h.constantPoolOff) > len(b) {
		return h, errf("constant pool offset %d beyond container length %d", h.constantPoolOff, len(b))
	}
	return h, nil
}

func encodeHeader(h header) []byte {
	b := make([]byte, headerSize)
	binary.BigEndian.PutUint32(b[0:4], Magic)
	binary.BigEndian.PutUint16(b[4:6], h.version)
	binary.BigEndian.PutUint16(b[6:8], h.conditionCount)
	binary.BigEndian.PutUint16(b[8:10], h.resultCount)
	binary.BigEndian.PutUint16(b[10:12], h.registerCount)
	binary.BigEndian.PutUint16(b[12:14], h.constantCount)
	binary.BigEndian.PutUint16(b[14:16], h.functionCount)
	binary.BigEndian.PutUint32(b[16:20], h.bddNodeCount)
	binary.BigEndian.PutUint32(b[20:24], uint32(h.bddRoot))
	binary.BigEndian.PutUint32(b[24:28], h.conditionTableOff)
	binary.BigEndian.PutUint32(b[28:32], h.resultTableOff)
	binary.BigEndian.PutUint32(b[32:36], h.functionTableOff)
	binary.BigEndian.PutUint32(b[36:40], h.constantPoolOff)
	binary.BigEndian.PutUint32(b[40:44], h.bddTableOff)
	return b
}

func readString(b []byte, off int) (string, int, error) {
	if off+2 > len(b) {
		return "", 0, errAt(off, "truncated string length prefix")
	}
	n := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if off+n > len(b) {
		return "", 0, errAt(off, "truncated string body (want %d bytes)", n)
	}
	return string(b[off : off+n]), off + n, nil
}

func writeString(buf []byte, s string) []byte {
	var lenbuf [2]byte
	binary.BigEndian.PutUint16(lenbuf[:], uint16(len(s)))
	buf = append(buf, lenbuf[:]...)
	return append(buf, s...)
}

// Load decodes a binary bytecode container (spec §4.1, §6) and resolves its
// function table against reg. reg is typically functions.NewStandardRegistry
// with any host extensions already registered.
func Load(b []byte, reg *functions.Registry) (*Bytecode, error) {
	h, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}

	off := int(h.conditionTableOff)
	conditionsAbs := make([]uint32, h.conditionCount)
	for i := range conditionsAbs {
		if off+offsetSize > len(b) {
			return nil, errAt(off, "truncated condition offset table")
		}
		conditionsAbs[i] = binary.BigEndian.Uint32(b[off : off+4])
		off += offsetSize
	}

	off = int(h.resultTableOff)
	resultsAbs := make([]uint32, h.resultCount)
	for i := range resultsAbs {
		if off+offsetSize > len(b) {
			return nil, errAt(off, "truncated result offset table")
		}
		resultsAbs[i] = binary.BigEndian.Uint32(b[off : off+4])
		off += offsetSize
	}

	off = int(h.resultTableOff) + int(h.resultCount)*offsetSize
	registers := make([]RegisterDefinition, h.registerCount)
	for i := range registers {
		rd, next, err := decodeRegisterDefinition(b, off)
		if err != nil {
			return nil, err
		}
		registers[i] = rd
		off = next
	}
	if uint32(off) > h.functionTableOff {
		return nil, errAt(off, "register definitions overran function table offset %d", h.functionTableOff)
	}

	off = int(h.functionTableOff)
	names := make([]string, h.functionCount)
	for i := range names {
		name, next, err := readString(b, off)
		if err != nil {
			return nil, err
		}
		names[i] = name
		off = next
	}
	if uint32(off) > h.bddTableOff {
		return nil, errAt(off, "function table overran BDD table offset %d", h.bddTableOff)
	}

	var missing []string
	fns := make([]functions.Function, len(names))
	for i, name := range names {
		fn, ok := reg.Resolve(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		fns[i] = fn
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errf("unresolved function(s): %v", missing)
	}

	off = int(h.bddTableOff)
	nodes := make([]Node, h.bddNodeCount)
	for i := range nodes {
		if off+bddNodeSize > len(b) {
			return nil, errAt(off, "truncated BDD node table")
		}
		nodes[i] = Node{
			VarIdx: binary.BigEndian.Uint32(b[off : off+4]),
			High:   Ref(int32(binary.BigEndian.Uint32(b[off+4 : off+8]))),
			Low:    Ref(int32(binary.BigEndian.Uint32(b[off+8 : off+12]))),
		}
		off += bddNodeSize
	}

	codeStart := off
	codeEnd := int(h.constantPoolOff)
	if codeEnd < codeStart || codeEnd > len(b) {
		return nil, errAt(codeStart, "invalid code section bounds [%d,%d)", codeStart, codeEnd)
	}
	code := b[codeStart:codeEnd]

	conditions := make([]int, len(conditionsAbs))
	for i, a := range conditionsAbs {
		conditions[i] = int(a) - codeStart
	}
	results := make([]int, len(resultsAbs))
	for i, a := range resultsAbs {
		results[i] = int(a) - codeStart
	}

	constants, _, err := decodeConstantPool(b, int(h.constantPoolOff), int(h.constantCount))
	if err != nil {
		return nil, err
	}

	root := Ref(h.bddRoot)
	if err := root.Validate(); err != nil {
		return nil, errf("%s", err)
	}

	return New(conditions, results, registers, constants, fns, nodes, root, code)
}

func decodeRegisterDefinition(b []byte, off int) (RegisterDefinition, int, error) {
	var rd RegisterDefinition
	name, off, err := readString(b, off)
	if err != nil {
		return rd, 0, err
	}
	rd.Name = name

	if off+2 > len(b) {
		return rd, 0, errAt(off, "truncated register definition for %q", name)
	}
	rd.Required = b[off] != 0
	rd.Temp = b[off+1] != 0
	off += 2

	if off+1 > len(b) {
		return rd, 0, errAt(off, "truncated register definition for %q", name)
	}
	hasDefault := b[off] != 0
	off++
	if hasDefault {
		var v values.Value
		var err error
		v, off, err = decodeConstant(b, off, 0)
		if err != nil {
			return rd, 0, err
		}
		rd.Default = v
	}

	if off+1 > len(b) {
		return rd, 0, errAt(off, "truncated register definition for %q", name)
	}
	hasBuiltin := b[off] != 0
	off++
	if hasBuiltin {
		var builtin string
		builtin, off, err = readString(b, off)
		if err != nil {
			return rd, 0, err
		}
		rd.Builtin = builtin
	}

	return rd, off, nil
}

// Encode serializes bc back to the binary container format. Round-tripping
// a container through Load then Encode reproduces it bit-for-bit (spec §8).
func (bc *Bytecode) Encode() []byte {
	var registerDefs, functionNames, bddTable, constantPool []byte

	for _, rd := range bc.Registers {
		registerDefs = encodeRegisterDefinition(registerDefs, rd)
	}
	for _, fn := range bc.Functions {
		functionNames = writeString(functionNames, fn.Name())
	}
	for _, n := range bc.Nodes {
		var buf [12]byte
		binary.BigEndian.PutUint32(buf[0:4], n.VarIdx)
		binary.BigEndian.PutUint32(buf[4:8], uint32(int32(n.High)))
		binary.BigEndian.PutUint32(buf[8:12], uint32(int32(n.Low)))
		bddTable = append(bddTable, buf[:]...)
	}
	for _, c := range bc.Constants {
		constantPool = encodeConstant(constantPool, c)
	}

	h := header{
		version:        Version,
		conditionCount: uint16(len(bc.Conditions)),
		resultCount:    uint16(len(bc.Results)),
		registerCount:  uint16(len(bc.Registers)),
		constantCount:  uint16(len(bc.Constants)),
		functionCount:  uint16(len(bc.Functions)),
		bddNodeCount:   uint32(len(bc.Nodes)),
		bddRoot:        int32(bc.Root),
	}

	h.conditionTableOff = headerSize
	h.resultTableOff = h.conditionTableOff + uint32(len(bc.Conditions)*offsetSize)
	regOff := h.resultTableOff + uint32(len(bc.Results)*offsetSize)
	h.functionTableOff = regOff + uint32(len(registerDefs))
	h.bddTableOff = h.functionTableOff + uint32(len(functionNames))
	codeStart := int(h.bddTableOff) + len(bddTable)
	h.constantPoolOff = uint32(codeStart + len(bc.Code))

	conditionTable := make([]byte, 0, len(bc.Conditions)*offsetSize)
	for _, c := range bc.Conditions {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(c+codeStart))
		conditionTable = append(conditionTable, buf[:]...)
	}
	resultTable := make([]byte, 0, len(bc.Results)*offsetSize)
	for _, r := range bc.Results {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(r+codeStart))
		resultTable = append(resultTable, buf[:]...)
	}

	out := encodeHeader(h)
	out = append(out, conditionTable...)
	out = append(out, resultTable...)
	out = append(out, registerDefs...)
	out = append(out, functionNames...)
	out = append(out, bddTable...)
	out = append(out, bc.Code...)
	out = append(out, constantPool...)
	return out
}

func encodeRegisterDefinition(buf []byte, rd RegisterDefinition) []byte {
	buf = writeString(buf, rd.Name)
	buf = append(buf, boolByte(rd.Required), boolByte(rd.Temp))
	buf = append(buf, boolByte(rd.HasDefault()))
	if rd.HasDefault() {
		buf = encodeConstant(buf, rd.Default)
	}
	buf = append(buf, boolByte(rd.HasBuiltin()))
	if rd.HasBuiltin() {
		buf = writeString(buf, rd.Builtin)
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
