package chash

import "hash/crc32"

// salt differentiates one unweighted ring (C3) from another inside the
// pool (C4). idHash is the 32-bit digest a salt maps a real's bytes to.
type salt = uint32
type idHash = uint32

// hashBytes computes a deterministic, platform-independent 32-bit digest of
// data salted by prev. It is the one primitive the rest of the package
// treats as a black box: any table-driven 32-bit polynomial CRC with good
// avalanche satisfies the contract. This uses the standard library's IEEE
// CRC-32 (the same table-driven construction as a typical crc32_fast),
// with the salt folded in as the running CRC's initial state — so two
// different salts over the same bytes land on unrelated digests.
func hashBytes(data []byte, prev salt) idHash {
	return crc32.Update(prev, crc32.IEEETable, data)
}
