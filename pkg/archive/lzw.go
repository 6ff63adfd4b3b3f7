package archive

import "github.com/glorpus-work/gnssget/pkg/errors"

// Unix compress (.Z) stream layout.
const (
	lzwMagic0    = 0x1f
	lzwMagic1    = 0x9d
	lzwBitsMask  = 0x1f
	lzwBlockMode = 0x80
	lzwInitBits  = 9
	lzwMaxBits   = 16
	lzwClear     = 256
)

func isUnixCompress(raw []byte) bool {
	return len(raw) >= 3 && raw[0] == lzwMagic0 && raw[1] == lzwMagic1
}

// unlzw expands a Unix compress stream.
//
// Codes are packed LSB first. The encoder writes codes in groups of eight, so
// whenever the code width grows or the table is cleared the reader skips to
// the end of the current group, measured from where that width began.
func unlzw(raw []byte) ([]byte, error) {
	if !isUnixCompress(raw) {
		return nil, errors.Wrap(ErrCorrupt, "missing compress magic")
	}
	maxBits := int(raw[2] & lzwBitsMask)
	block := raw[2]&lzwBlockMode != 0
	if maxBits < lzwInitBits || maxBits > lzwMaxBits {
		return nil, errors.Wrapf(ErrCorrupt, "unsupported code width %d", maxBits)
	}

	data := raw[3:]
	totalBits := len(data) * 8
	maxMaxCode := 1 << maxBits

	prefix := make([]uint16, maxMaxCode)
	suffix := make([]byte, maxMaxCode)
	for i := 0; i < 256; i++ {
		suffix[i] = byte(i)
	}

	firstFree := 256
	if block {
		firstFree = lzwClear + 1
	}

	var (
		nBits    = lzwInitBits
		maxCode  = 1<<nBits - 1
		free     = firstFree
		oldCode  = -1
		finChar  byte
		pos      int
		groupPos int
		stack    = make([]byte, 0, 1024)
		out      = make([]byte, 0, len(data)*3)
	)

	alignGroup := func() {
		n := nBits * 8
		if rel := pos - groupPos; rel%n != 0 {
			pos = groupPos + (rel/n+1)*n
		}
		groupPos = pos
	}

	for {
		if free > maxCode && nBits < maxBits {
			alignGroup()
			nBits++
			if nBits == maxBits {
				maxCode = maxMaxCode
			} else {
				maxCode = 1<<nBits - 1
			}
		}
		if pos+nBits > totalBits {
			break
		}

		code := readBits(data, pos, nBits)
		pos += nBits

		if oldCode == -1 {
			if code >= 256 {
				return nil, errors.Wrapf(ErrCorrupt, "invalid first code %d", code)
			}
			oldCode = code
			finChar = byte(code)
			out = append(out, finChar)
			continue
		}

		if code == lzwClear && block {
			alignGroup()
			nBits = lzwInitBits
			maxCode = 1<<nBits - 1
			free = firstFree
			oldCode = -1
			continue
		}

		inCode := code
		stack = stack[:0]
		if code >= free {
			if code > free {
				return nil, errors.Wrapf(ErrCorrupt, "code %d beyond table size %d", code, free)
			}
			stack = append(stack, finChar)
			code = oldCode
		}
		for code >= 256 {
			stack = append(stack, suffix[code])
			code = int(prefix[code])
		}
		finChar = suffix[code]
		stack = append(stack, finChar)
		for i := len(stack) - 1; i >= 0; i-- {
			out = append(out, stack[i])
		}

		if free < maxMaxCode {
			prefix[free] = uint16(oldCode)
			suffix[free] = finChar
			free++
		}
		oldCode = inCode
	}

	return out, nil
}

// readBits returns the n-bit little-endian code starting at bit pos.
func readBits(data []byte, pos, n int) int {
	i := pos >> 3
	word := int(data[i])
	if i+1 < len(data) {
		word |= int(data[i+1]) << 8
	}
	if i+2 < len(data) {
		word |= int(data[i+2]) << 16
	}
	return (word >> (pos & 7)) & (1<<n - 1)
}
