package bitio

// VByteEncode encodes x as a byte-oriented variable-length integer and
// appends it to dst, returning the extended slice.
//
// The leading byte's unary prefix of 1-bits gives the number of
// continuation bytes n (0 <= n <= 8); a 0 bit terminates the prefix
// (omitted when n==8, since the leading byte is then all 1-bits and the
// 8 continuation bytes carry the full 64-bit significand). The
// remaining bits of the leading byte, followed by the continuation
// bytes, hold the significand big-endian. Values < 128 encode as a
// single byte <= 0x7f.
func VByteEncode(dst []byte, x uint64) []byte {
	n := 0
	for avail := uint(7); n < 8 && x>>avail != 0; avail += 7 {
		n++
	}
	if n == 0 {
		return append(dst, byte(x))
	}
	if n == 8 {
		dst = append(dst, 0xff)
	} else {
		sigMask := byte(1<<uint(7-n)) - 1
		lead := byte(0xff<<uint(8-n)) | (byte(x>>(uint(n)*8)) & sigMask)
		dst = append(dst, lead)
	}
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(x>>(uint(i)*8)))
	}
	return dst
}

// VByteDecode decodes a single VByte-encoded integer from the front of
// src, returning the value and the number of bytes consumed. It returns
// (0, 0) if src is empty or truncated.
func VByteDecode(src []byte) (x uint64, n int) {
	if len(src) == 0 {
		return 0, 0
	}
	lead := src[0]
	count := 0
	for b := byte(0x80); count < 8 && lead&b != 0; b >>= 1 {
		count++
	}
	if len(src) < count+1 {
		return 0, 0
	}
	if count == 0 {
		return uint64(lead), 1
	}
	if count < 8 {
		x = uint64(lead &^ byte(0xff<<(7-count)))
	}
	for i := 0; i < count; i++ {
		x = (x << 8) | uint64(src[1+i])
	}
	return x, count + 1
}
