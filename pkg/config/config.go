// Package config holds the checker-wide settings the resolver consumes:
// endianness, word size, pointer width, and the two check-suppression
// flags.
package config

// Config is a plain settings struct, populated by the CLI (flag package,
// see cmd/derefresolve) or by an embedding symbolic-execution loop. It
// carries no behaviour of its own.
type Config struct {
	// NoPointerCheck drops every obligation the Failure Sink would
	// otherwise emit.
	NoPointerCheck bool

	// NoBoundsCheck drops only bounds obligations: "array bounds
	// violated" and "Access to object out of bounds".
	NoBoundsCheck bool

	// BigEndian selects MSB-first byte assembly for ByteExtract/Concat.
	BigEndian bool

	// WordSize is the machine word size in bytes, used to round dynamic
	// struct field windows.
	WordSize uint64

	// PointerWidth is the pointer width in bits.
	PointerWidth uint64
}

// Default returns the settings of a typical 64-bit little-endian target.
func Default() *Config {
	return &Config{
		WordSize:     8,
		PointerWidth: 64,
	}
}
