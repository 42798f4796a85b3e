package system

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const (
	evKey = 0x01

	keyPressed = 1
)

// Function key codes from linux/input-event-codes.h.
var keyCodes = map[string]uint16{
	"F1": 59, "F2": 60, "F3": 61, "F4": 62, "F5": 63, "F6": 64,
	"F7": 65, "F8": 66, "F9": 67, "F10": 68, "F11": 87, "F12": 88,
	"HOME": 102, "END": 107, "INSERT": 110, "PAUSE": 119, "SCROLLLOCK": 70,
}

// KeyCode resolves a key name such as "F10" or a raw numeric code.
func KeyCode(name string) (uint16, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if code, ok := keyCodes[name]; ok {
		return code, nil
	}
	if n, err := strconv.ParseUint(name, 10, 16); err == nil && n > 0 {
		return uint16(n), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// keyPresses decodes a buffer of input_event records (timeval, u16 type, u16 code,
// s32 value) and returns the codes of keys that went down. Auto-repeat (value 2)
// and releases are skipped.
func keyPresses(buf []byte, timevalSize int) []uint16 {
	eventSize := timevalSize + 2 + 2 + 4
	var codes []uint16
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[timevalSize : timevalSize+2])
		code := binary.LittleEndian.Uint16(rec[timevalSize+2 : timevalSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[timevalSize+4 : timevalSize+8]))
		if typ == evKey && value == keyPressed {
			codes = append(codes, code)
		}
	}
	return codes
}
