// Package redis opens go-redis clients and provides a distributed lock.
//
// Open validates the URL (redis:// or rediss://), applies pool settings and
// pings the server with linear backoff. Healthcheck and Shutdown return
// closures for readiness endpoints and shutdown hooks.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"), redis.WithPoolSize(20))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Locking
//
// Locker serializes slug assignment for one entity type across every process
// that shares the Redis instance. It satisfies sluggable.Locker:
//
//	gen := sluggable.New(lookup, sluggable.WithLocker(redis.NewLocker(client)))
//
// A lock expires after its TTL so a crashed holder cannot block writers
// forever. The unique index on the slug column stays the final guard.
package redis
