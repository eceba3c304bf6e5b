// Package schema renders migration operations as backend-specific DDL
// text for PostgreSQL, MySQL and SQLite. Editors are pure string
// builders; executing the generated SQL belongs to an external
// connection and is refused here.
package schema
