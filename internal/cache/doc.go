// Package cache is the short-lived result cache in front of dataset consolidation.
//
// Cache exposes GetOrCompute(key, ttl) and Invalidate(key). Entries are replaced
// wholesale and expire after their TTL; concurrent misses for one key share a single
// computation. Values are stored encoded, so every hit hands out an independent copy.
//
// Two byte stores back the cache:
//
//	MemoryStore  in-process map with a size bound and hit statistics
//	RedisStore   go-redis client, for deployments running several replicas
package cache
