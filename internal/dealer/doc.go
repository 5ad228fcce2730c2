// Package dealer deals one hand and gates what may be disclosed from it.
//
// StartHand shuffles a fresh deck from a randstream seed, deals hole cards and
// the flop, turn and river, and commits a secret for every street and every
// player. Street secrets are additively shared among the players. Reveal,
// Advance and Showdown then release cards only to callers presenting the
// matching secret, or only in phase order, depending on the table's
// discipline.
//
// The package is pure: it mutates the Table it is handed and never touches
// storage. Callers persist the Table and counter together.
package dealer
