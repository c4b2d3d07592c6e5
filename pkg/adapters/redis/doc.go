// Package redis provides a Redis backed ports.StateStore and a
// ports.DistributedLocker for engines running on several replicas.
package redis
