// Package testdb provides isolated SurrealDB databases for integration tests.
//
// Tests are skipped unless TEST_DB_HOST is set:
//
//	surreal start memory -A --user root --pass root
//	TEST_DB_HOST=localhost go test ./internal/repository/...
//
// Create a database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewKVRepository(tdb.DB)
//	}
//
// Each TestDB gets its own namespace with the repository schema applied.
// The namespace is removed when the test finishes.
package testdb
