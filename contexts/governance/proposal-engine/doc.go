// Package proposalengine implements the governance proposal and voting
// engine inside the governance context.
//
// The module owns member registration, the proposal lifecycle
// (active, closed, approved or rejected, executed), one-vote-per-member
// tallying and quorum/approval finalization with a delayed execution gate.
// Executed proposals hand their opaque execution context back to the caller;
// ledger and staking effects happen in external collaborators reached through
// ports.ExecutionHandler. Mutations run as critical sections through
// ports.Repository.Atomically and write their domain events to the outbox in
// the same section.
package proposalengine
