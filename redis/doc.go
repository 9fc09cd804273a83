// Package redis provides the Redis client component and the shared
// fixed-window rate limiter used to throttle register and login across
// service instances.
//
//	comp := redis.NewComponent(cfg, log)
//	_ = comp.Start(ctx)
//	limiter := redis.NewLimiter(comp.Client(), 10, time.Minute)
package redis
