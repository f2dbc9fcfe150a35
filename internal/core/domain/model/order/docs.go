// Package order implements the Order aggregate and the shipment lifecycle
// state machine.
//
// The package includes:
//   - Order: the aggregate root that owns its Shipment and decides every stage transition
//   - Stage: the lifecycle enum (accepted through delivered, plus cancelled, rejected, failed)
//   - Status: the business order status shown to operators
//   - Shipment, CourierAssignment, Pickup: provider-side identifiers filled in stage by stage
//   - TrackingEvent: append-only provider scans and their classification
//   - ReconciliationIssue: a durable record of local/provider disagreement
//
// Aggregate methods are pure: handlers call the logistics provider first and
// then pass the result to the matching method. A method that returns an error
// leaves the order unchanged.
package order
