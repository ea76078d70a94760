// Package bwire implements the BCSV file envelope: the fixed-size records
// (file header, layout block, packet header, byte index, catalog entry,
// footer) that frame a file on disk. Every multi-byte field is little-endian
// via encoding/binary; the wire format has no configurable byte order.
//
// Each record type follows the same shape: a Go struct mirroring the field
// layout, a Bytes() method that serializes it, and a Parse<Name> free
// function that validates and decodes it back.
package bwire
