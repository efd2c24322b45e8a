package main

import (
	"analytics-service/config"
	"analytics-service/deferred"
	aws_pkg "analytics-service/pkg/aws"
	"analytics-service/sink"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const minCookieSecret = 32

// buildStores returns the deferred store factory for cfg. A redis mode
// without a live client falls back to cookies, or to no store when no
// cookie secret is configured. The memory store is returned for sweeping.
func buildStores(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*deferred.Factory, *deferred.MemoryStore) {
	switch cfg.DeferredStore {
	case deferred.ModeRedis:
		if redisClient != nil {
			return deferred.NewBackendFactory(deferred.ModeRedis, deferred.NewRedisStore(redisClient, cfg.DeferredTTL, logger)), nil
		}
		if len(cfg.CookieSecret) >= minCookieSecret {
			logger.Warn("Redis unavailable, deferred events fall back to cookies")
			return cookieFactory(cfg), nil
		}
		logger.Warn("Redis unavailable and no cookie secret, deferred events disabled")
		return deferred.NewNopFactory(), nil
	case deferred.ModeMemory:
		mem := deferred.NewMemoryStore(cfg.DeferredTTL)
		return deferred.NewBackendFactory(deferred.ModeMemory, mem), mem
	case deferred.ModeNone:
		return deferred.NewNopFactory(), nil
	default:
		return cookieFactory(cfg), nil
	}
}

func cookieFactory(cfg *config.Config) *deferred.Factory {
	return deferred.NewCookieFactory(
		deferred.NewTokenCodec([]byte(cfg.CookieSecret)),
		deferred.CookieOptions{
			Prefix: cfg.CookiePrefix,
			Path:   "/",
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			TTL:    cfg.DeferredTTL,
		},
	)
}

func buildSink(cfg *config.Config, awsCfg sdkaws.Config, logger *zap.Logger) sink.Sink {
	switch cfg.SinkType {
	case sink.TypeKafka:
		return sink.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	case sink.TypeSNS:
		return sink.NewSNSSink(aws_pkg.NewSNSClient(awsCfg), cfg.SNSTopicARN)
	case sink.TypeNone:
		return sink.Nop{}
	default:
		return sink.NewLogSink(logger)
	}
}
