// Package redis connects to the Redis server that relays inbox events
// between notifyd replicas.
//
// Connect retries the initial ping according to Config and returns a
// go-redis client. Healthcheck turns a client into a readiness probe. An
// empty REDIS_URL means Redis is not used; Config.Enabled reports it.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	if cfg.Enabled() {
//	    client, err := redis.Connect(ctx, cfg)
//	    if err != nil {
//	        return err
//	    }
//	    defer client.Close()
//	}
package redis
