/*
Package session serializes access to form sessions.

A Manager wraps a ports.StateStore with a per-session mutex (reference
counted so idle sessions leave nothing behind) and, when configured, a
ports.DistributedLocker so that several replicas sharing a store never
interleave the load, mutate and save cycle of the same session.
*/
package session
