// Package cointoss implements a private two-party betting contract: a user
// and a fixed house counterparty stake identical amounts on a binary
// outcome, funds are escrowed through a private token contract, the outcome
// is supplied by a divinity through a private oracle, and the winner is paid
// the full pot.
//
// All state lives in private notes on an append-only log. A bet's lifecycle
// is inferred from log membership rather than a stored status field:
//
//	unregistered -> open (id tag nullifier + bet note)
//	open -> resolved (result note from the trusted oracle)
//	resolved -> settled (bet note nullified, escrow paid out)
//
// Trust in oracle callbacks is deferred: anyone may invoke the callback, but
// settlement only honors result notes whose sender is the configured oracle
// address.
package cointoss
