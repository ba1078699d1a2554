/*
Package session serializes access to conversation state.

A Manager wraps a ports.StateStore and guarantees that at most one turn runs per
conversation at a time: in process through reference-counted mutexes, and across
replicas through an optional ports.DistributedLocker.
*/
package session
