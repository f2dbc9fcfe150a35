// Package services provides domain services that hold logic spanning several
// domain objects.
//
// The package includes:
//   - CourierSelector: ranks courier quotes and picks the best one for a shipment
//
// Domain services are stateless and perform no I/O; the quotes they rank come
// from the logistics provider through the application layer.
package services
