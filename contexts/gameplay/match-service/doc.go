// Package matchservice implements the gameplay turn core: a crowd of voters
// plays a two-color disc game against an automated opponent.
//
// The module owns the match lifecycle (create/list/finish), per-turn move
// candidates and ballots with transactionally consistent tallies, and the
// turn coordinator that closes voting and commits the winning move. Business
// rules live in the domain and application layers; infrastructure stays
// behind ports and adapters.
package matchservice
