// Package kopeer copies files, symlinks and directory trees while keeping
// the number of simultaneous filesystem operations bounded.
//
// Directory copies walk the source once, create every destination
// directory, and only then write files and symlinks. Each operation has a
// direct-return form:
//
//	err := kopeer.Directory(ctx, "src", "dst", kopeer.Options{Limit: 64})
//
// and a completion-callback form that runs in its own goroutine and calls
// done exactly once:
//
//	kopeer.DirectoryFunc(ctx, "src", "dst", kopeer.Options{}, func(err error) { ... })
package kopeer
