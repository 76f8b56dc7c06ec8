package config

import (
    "time"

    "github.com/spf13/viper"
)

// CacheConfig defines settings for the catalog cache.  When Enabled is
// false or no Redis client is configured, catalog reads always go to the
// database.  TTL bounds how stale a listing can be if an invalidation is
// lost; Prefix namespaces the keys.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

func setCacheDefaults(v *viper.Viper) {
    v.SetDefault("CACHE_ENABLED", true)
    v.SetDefault("CACHE_TTL", "30s")
    v.SetDefault("CACHE_PREFIX", "cinemaflow:cache")
}

func loadCacheConfig(v *viper.Viper) CacheConfig {
    ttl := v.GetDuration("CACHE_TTL")
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    return CacheConfig{
        Enabled: v.GetBool("CACHE_ENABLED"),
        TTL:     ttl,
        Prefix:  v.GetString("CACHE_PREFIX"),
    }
}
