// Package modhash computes the content identity of a mod archive.
//
// A content identity is a cryptographic digest over the raw bytes of the archive
// followed by the UTF-8 bytes of the mod's expected name. Binding the name into the
// digest means the same archive renamed to a different mod produces a different
// identity, so a renamed substitution is detected exactly like corruption.
//
// # Algorithms
//
//   - md5: the default, matches the hashes published by the game's dedicated server.
//   - sha1, sha256: stronger digests for servers that publish them.
//   - blake2b: BLAKE2b-256 from golang.org/x/crypto.
//   - none: hashing disabled; callers fall back to version comparison.
//
// # Usage
//
//	algo, err := modhash.ParseAlgorithm("MD5")
//	sum, err := modhash.ComputeFile("/mods/cropA.zip", algo)
//	// or bind to an explicit name, e.g. when verifying a temp download:
//	sum, err = modhash.Compute("/mods/cropA.zip.tmp", "cropA", algo)
package modhash
