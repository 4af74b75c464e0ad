// Package control implements the local gRPC channel commanding a running chime.
//
// A running scheduler serves it on a loopback address so that command line
// invocations (test play, style, autostart, exit) act on that process instead
// of opening a second audio device. Messages are protobuf well-known types.
package control
