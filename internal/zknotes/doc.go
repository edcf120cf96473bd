// Package zknotes emulates the private-state platform the Coin Toss contract
// runs on: an append-only log of encrypted notes, a public commitment list,
// and a nullifier set with duplicate-insert rejection.
//
// Overview:
//   - Notes are encrypted per recipient; the same plaintext broadcast to two
//     parties produces two independent ciphertexts
//   - Commitments prove note existence without revealing contents
//   - Nullifiers mark notes (or abstract identifiers) as consumed; a
//     nullifier can be published at most once
//
// Security model:
//   - MiMC hash (BW6-761 scalar field) for commitments, nullifiers, PRFs
//   - BLS12-377 ephemeral Diffie-Hellman + additive MiMC mask chain for note
//     encryption
//   - All randomness from crypto/rand
//
// The log is guarded by a mutex: contract invocations are atomic per the
// host transaction model, concurrency exists only across transactions.
package zknotes
