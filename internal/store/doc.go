// Package store defines the persistence contracts of the application:
// the DBTX database abstraction, the generic Repository interface and its
// entity Mapper, the optional SoftDeletable/Owned capability interfaces,
// sentinel errors, and transaction helpers. Implementations live in
// internal/platform/postgres.
package store
