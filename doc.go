// Package realized computes realized capital gains and dividend income from a
// brokerage activity history.
//
// A computation starts from a Baseline, a snapshot of holdings per account
// category at a given date, and replays the activity that follows it:
//   - Catch-up: trades between the baseline and the start of the reporting
//     window rebuild the positions. Their sells reduce quantities but book no
//     gain.
//   - Reporting: trades inside the window are replayed on a weighted average
//     cost Ledger and every sell books its realized amount, into a dense daily
//     series and a per-symbol breakdown.
//
// Account categories are independent ledgers: Margin on one side, TFSA and
// RRSP together on the other. Compute merges them into a single Result,
// ComputeByCategory keeps them apart.
//
// Sells the ledger cannot honor (unknown symbol, more than held) are data
// integrity problems. With the Lenient policy they are skipped and reported as
// Issues, with the Strict policy the computation stops on the first one.
//
// This package serves as the foundational logic for the `rgc` command-line
// tool and its HTTP API.
package realized
