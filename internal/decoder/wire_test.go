package decoder

import "encoding/binary"

// Word-building helpers shared by the decoder tests. They construct the
// little-endian byte encodings of each wire format's words.

func concat(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// EVT3 (16-bit words)

func e3Word(tag, payload uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, tag<<12|payload)
	return b
}

func e3TimeHigh(v uint16) []byte { return e3Word(evt3TimeHigh, v&0xFFF) }
func e3TimeLow(v uint16) []byte  { return e3Word(evt3TimeLow, v&0xFFF) }
func e3AddrY(y uint16) []byte    { return e3Word(evt3AddrY, y&0x7FF) }

func e3AddrX(x uint16, pol bool) []byte {
	payload := x & 0x7FF
	if pol {
		payload |= 1 << 11
	}
	return e3Word(evt3AddrX, payload)
}

func e3VectBase(x uint16, pol bool) []byte {
	payload := x & 0x7FF
	if pol {
		payload |= 1 << 11
	}
	return e3Word(evt3VectBaseX, payload)
}

func e3Vect12(mask uint16) []byte { return e3Word(evt3Vect12, mask&0xFFF) }
func e3Vect8(mask uint16) []byte  { return e3Word(evt3Vect8, mask&0xFF) }
func e3Cont12(mask uint16) []byte { return e3Word(evt3Continued12, mask&0xFFF) }

func e3Trigger(id uint16, pol bool) []byte {
	payload := (id & 0xF) << 8
	if pol {
		payload |= 1
	}
	return e3Word(evt3Trigger, payload)
}

// EVT2 (32-bit words)

func e2Word(w uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, w)
	return b
}

func e2TimeHigh(v uint32) []byte { return e2Word(evt2TimeHigh<<28 | v&0x0FFFFFFF) }

func e2CD(on bool, timeLow, x, y uint32) []byte {
	tag := uint32(evt2CDOff)
	if on {
		tag = evt2CDOn
	}
	return e2Word(tag<<28 | (timeLow&0x3F)<<22 | (x&0x7FF)<<11 | y&0x7FF)
}

func e2Trigger(timeLow, id uint32, pol bool) []byte {
	w := uint32(evt2Trigger)<<28 | (timeLow&0x3F)<<22 | (id&0x1F)<<8
	if pol {
		w |= 1
	}
	return e2Word(w)
}

// EVT2.1 (64-bit words)

func e21Word(w uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, w)
	return b
}

func e21TimeHigh(v uint64) []byte { return e21Word(evt21TimeHigh<<60 | (v&0x0FFFFFFF)<<32) }

func e21CD(pos bool, timeLow uint64, x, y uint64, mask uint32) []byte {
	tag := uint64(evt21Neg)
	if pos {
		tag = evt21Pos
	}
	return e21Word(tag<<60 | (timeLow&0x3F)<<54 | (x&0x7FF)<<43 | (y&0x7FF)<<32 | uint64(mask))
}

func e21Cont(mask uint32) []byte {
	return e21Word(uint64(evt21Continued)<<60 | uint64(mask))
}

func e21Trigger(timeLow, id uint64, pol bool) []byte {
	w := uint64(evt21Trigger)<<60 | (timeLow&0x3F)<<54 | (id&0x1F)<<40
	if pol {
		w |= 1 << 32
	}
	return e21Word(w)
}
