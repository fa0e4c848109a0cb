// Package reconcile compares the server's mod manifest against the local inventory.
//
// The remote manifest is authoritative: Compare yields exactly one Result per
// remote record, and local archives with no remote counterpart never appear in
// the output (they are not deleted either).
//
// # Status resolution
//
// For each remote record the local mod with the same name (case-insensitive) is
// looked up and the status is decided in order:
//
//  1. No local match: Missing.
//  2. Hashing enabled and both hashes present: equal (case-insensitive) is Latest,
//     anything else is UpdateAvailable. Versions are ignored in this case.
//  3. Both versions present: dotted numeric comparison, local >= remote is Latest.
//     Unparsable versions fall back to an ordinal string comparison.
//  4. Otherwise UpdateAvailable, so an unknown local file is re-fetched rather
//     than trusted.
//
// # Plan
//
// BuildPlan sorts results by display priority (Missing, UpdateAvailable, Latest)
// and extracts the pending list that the transfer pass consumes.
//
// # Usage Example
//
//	plan := reconcile.ReconcileWithPlan(remoteMods, localMods, modhash.AlgorithmMD5)
//	for _, r := range plan.Pending {
//	    fmt.Println(r.Remote.Name, r.Status)
//	}
package reconcile
