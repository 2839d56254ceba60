// Package hash provides the 64-bit string hash used to key interned event texts.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of s.
func ID(s string) uint64 {
	return xxhash.Sum64String(s)
}

// IDBytes computes the xxHash64 of b. IDBytes(b) == ID(string(b)).
func IDBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}
