// Package courier models the courier quotes returned by the provider's
// serviceability and rate queries.
//
// Quotes are ephemeral: they are produced by a rate query, ranked by the
// courier selector or shown to an operator, and then discarded. Only the
// chosen courier is kept on the shipment, as an order.CourierAssignment.
package courier
