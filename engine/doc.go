// Package engine wraps a single SQLite connection and its prepared
// statements in safe, owned handles: open/prepare/execute, typed value
// refs that never copy until asked to, progress callbacks, pointer
// binding, bytecode introspection and extension loading.
//
// It is built on github.com/mattn/go-sqlite3 rather than a pure-Go
// transpiled engine (modernc.org/sqlite) because extension loading needs
// a real dlopen, which a transpiled engine cannot provide.
//
// Build tags. Two features used here are gated behind go-sqlite3 build
// tags and CGO_CFLAGS:
//   - Serialize/Deserialize need the `sqlite_serialize` build tag.
//   - Connection.BytecodeSteps needs SQLite built with
//     -DSQLITE_ENABLE_BYTECODE_VTAB=1 (CGO_CFLAGS), since the `bytecode()`
//     eponymous virtual table is not part of go-sqlite3's default build.
//
// Binaries embedding this package should build with:
//
//	CGO_CFLAGS="-DSQLITE_ENABLE_BYTECODE_VTAB=1" go build -tags sqlite_serialize ./...
package engine
