// Package repository implements SurrealDB-backed persistence.
//
// KVRepository backs the durable key-value slots (form state, archive,
// completion markers) when STORAGE_BACKEND=surrealdb. SheetRepository holds
// the development receiver's sheet.
//
// Repositories accept a database.Database interface, so tests can substitute
// a fake that records queries and returns canned {status, result} responses.
// Queries are parameterized with $variable syntax and address records with
// type::thing().
package repository
