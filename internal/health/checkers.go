package health

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/redis/go-redis/v9"

	"github.com/zsiec/rasterize/internal/raster"
)

// RedisChecker checks result cache connectivity.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Name() string { return "redis" }

func (r *RedisChecker) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// EncoderChecker verifies the PNG encode path by converting a one-pixel
// frame and checking the output carries the PNG signature.
type EncoderChecker struct{}

// NewEncoderChecker creates a new encoder self-check.
func NewEncoderChecker() *EncoderChecker {
	return &EncoderChecker{}
}

func (e *EncoderChecker) Name() string { return "encoder" }

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func (e *EncoderChecker) Check(ctx context.Context) error {
	out, err := raster.EncodeStill(1, 1, []byte{0xFF, 0x00, 0x00, 0xFF})
	if err != nil {
		return fmt.Errorf("still encode self-check failed: %w", err)
	}
	if !bytes.HasPrefix(out, pngSignature) {
		return fmt.Errorf("still encode self-check produced non-PNG output")
	}
	return nil
}

// MemoryChecker reports down when heap usage exceeds a fraction of the
// total obtained from the OS.
type MemoryChecker struct {
	threshold float64
}

// NewMemoryChecker creates a new memory checker. Threshold is a fraction
// in (0, 1], e.g. 0.9 for 90%.
func NewMemoryChecker(threshold float64) *MemoryChecker {
	return &MemoryChecker{threshold: threshold}
}

func (m *MemoryChecker) Name() string { return "memory" }

func (m *MemoryChecker) Check(ctx context.Context) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	if stats.Sys == 0 {
		return nil
	}
	usage := float64(stats.HeapAlloc) / float64(stats.Sys)
	if usage > m.threshold {
		return fmt.Errorf("heap usage %.1f%% exceeds threshold %.1f%%", usage*100, m.threshold*100)
	}
	return nil
}
