package common

import "math/big"

// Helper function to pad big-endian bytes to 32 bytes
func PadTo32Bytes(b []byte) []byte {
	if len(b) >= 32 {
		return b
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

// BoolToUint maps false/true to 0/1
func BoolToUint(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// BigsToStrings renders integers as decimal strings
func BigsToStrings(values ...*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
