package rdx

import (
	"os"

	"mandi/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(globals.Ctx, hash, field).Result()
}
