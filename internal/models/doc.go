// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Group: a set of members who share expenses
//   - Expense: an amount paid by one member and split among members
//   - Split: one member's share of an expense, in currency units
//   - Settlement: a recorded real-world payment between two members
//
// Members are plain integer handles (MemberID). They have no lifecycle of their
// own and exist only as references from groups, splits and settlements.
//
// # Design Principles
//
// 1. **Foreign keys, not pointers**: relations are ID fields plus lookup, so the
// balance calculation stays a pure function over a snapshot
// 2. **Exact money**: amounts are decimal.Decimal normalized to cents
// 3. **Append-only history**: expenses and settlements are never edited
package models
