// Package common holds helpers shared by the command line and the running scheduler.
//
// It provides a lightweight gRPC client for the local control channel, with
// per-call timeouts.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
