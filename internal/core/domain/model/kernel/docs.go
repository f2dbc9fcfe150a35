// Package kernel provides the shared value objects of the shipping domain.
//
// The package includes:
//   - UUID: identifier for orders and reconciliation issues
//   - Address: a validated postal address used in customer snapshots
//   - Money: a non-negative decimal amount used for charges, declared values and the wallet
//
// All values are immutable and their zero values fail validation, so they must be
// built through the constructors.
package kernel
