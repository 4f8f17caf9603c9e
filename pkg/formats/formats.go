// Package formats reads and writes map scenes, baked mesh streams and glTF
// exports.
package formats
