package symbols

import (
	"encoding/json"
	"fmt"

	"github.com/minio/highwayhash"
)

// key must stay 32 bytes long; highwayhash panics otherwise.
var key = []byte("symmerge-fingerprint-key-0123456")

// Hash returns the 64-bit highwayhash of data.
func Hash(data []byte) uint64 {
	return highwayhash.Sum64(data, key)
}

// fingerprint hashes the JSON encoding of v. Symbols hold only strings,
// bools, slices and pointers to other symbols, so encoding cannot fail.
func fingerprint(v any) uint64 {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("symbols: encoding %T for fingerprint: %v", v, err))
	}
	return Hash(data)
}

// Fingerprint hashes the structural signature. Equal symbols share a fingerprint.
func (f *FunctionSymbol) Fingerprint() uint64 { return fingerprint(f) }

// Fingerprint hashes the overload set.
func (o *OverloadedFunctionSymbol) Fingerprint() uint64 { return fingerprint(o) }

// Fingerprint hashes the class shape, excluding members.
func (c *ClassSymbol) Fingerprint() uint64 { return fingerprint(c.Shape()) }
