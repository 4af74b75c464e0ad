// Package instance makes sure only one chime scheduler runs per user session.
//
// The Guard claims a named OS resource that the OS releases when the process
// ends, however it ends: an advisory flock on a lock file on Unix and a named
// mutex on Windows. There is deliberately no Release.
package instance
