// Package cli wires together the Cobra command tree for the alfred binary.
//
// It defines the root command and all subcommands (review, diff, pr, history,
// costs, balance, setup, config, github, version), binds flags, builds the
// shared collaborators from configuration, and returns deterministic exit
// codes.
package cli
