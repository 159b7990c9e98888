// Package codec 把框架核心与字节级线上格式粘合起来。
//
// 一个 Codec 同时提供一个格式的序列化端与反序列化端；
// 具体格式在各自子包中实现并通过 Register 按名字注册，
// 调用方既可以直接持有 Codec，也可以通过包级 Marshal/Unmarshal 按名使用。
// 指标与日志只在这个边界累积，框架核心保持静默。
package codec

import (
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/sea-grass/getty/pkg/log"
	"github.com/sea-grass/getty/pkg/metrics"
)

// Codec 抽象“对象 <-> 字节序列”的完整编解码能力。
type Codec interface {
	// Name 返回格式名，同时用作注册键与指标标签。
	Name() string

	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 必须为非 nil 指针，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Codec)
)

// Register 按名字注册一个 Codec；重名时后注册者覆盖前者。
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Name()] = c
}

// Get 按名字查找已注册的 Codec。
func Get(name string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	return c, ok
}

// Marshal 按名字查找 Codec 并编码，同时累积指标。
func Marshal(name string, v any) ([]byte, error) {
	c, ok := Get(name)
	if !ok {
		return nil, errors.Newf("codec: %q not registered", name)
	}

	data, err := c.Marshal(v)
	if err != nil {
		metrics.EncodeTotal.WithLabelValues(name, metrics.StatusFail).Inc()
		log.Warn("codec: marshal failed", zap.String("codec", name), zap.Error(err))
		return nil, errors.Wrapf(err, "codec: marshal via %q", name)
	}

	metrics.EncodeTotal.WithLabelValues(name, metrics.StatusOK).Inc()
	metrics.EncodeBytes.WithLabelValues(name).Observe(float64(len(data)))
	return data, nil
}

// Unmarshal 按名字查找 Codec 并解码，同时累积指标。
func Unmarshal(name string, data []byte, v any) error {
	c, ok := Get(name)
	if !ok {
		return errors.Newf("codec: %q not registered", name)
	}

	if err := c.Unmarshal(data, v); err != nil {
		metrics.DecodeTotal.WithLabelValues(name, metrics.StatusFail).Inc()
		log.Warn("codec: unmarshal failed", zap.String("codec", name), zap.Error(err))
		return errors.Wrapf(err, "codec: unmarshal via %q", name)
	}

	metrics.DecodeTotal.WithLabelValues(name, metrics.StatusOK).Inc()
	metrics.DecodeBytes.WithLabelValues(name).Observe(float64(len(data)))
	return nil
}
