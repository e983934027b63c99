package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// HeaderReader 读取区块头，*ethclient.Client 实现了该接口
type HeaderReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Dial 创建链客户端并做一次连通性检查
func Dial(ctx context.Context, cfg config.ChainConfig) (*ethclient.Client, error) {
	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("no RPC URL configured")
	}
	client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RpcUrl, err)
	}
	chainId, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("client connection test failed: %w", err)
	}
	logger.Info("Connected to chain %s via %s", chainId, cfg.RpcUrl)
	return client, nil
}

// BlockClock 以最新区块时间作为当前时间。
// 读取失败时返回上一次成功读取的时间，从未成功时使用 fallback。
type BlockClock struct {
	reader   HeaderReader
	timeout  time.Duration
	fallback rewards.Clock

	mu   sync.Mutex
	last time.Time
}

// NewBlockClock 创建区块时钟
func NewBlockClock(reader HeaderReader, timeout time.Duration, fallback rewards.Clock) *BlockClock {
	if fallback == nil {
		fallback = rewards.SystemClock
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BlockClock{reader: reader, timeout: timeout, fallback: fallback}
}

// Now 实现 rewards.Clock
func (c *BlockClock) Now() time.Time {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	header, err := c.reader.HeaderByNumber(ctx, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || header == nil {
		logger.Warn("Failed to read latest block header: %v", err)
		if c.last.IsZero() {
			return c.fallback.Now()
		}
		return c.last
	}
	ts := time.Unix(int64(header.Time), 0).UTC()
	// 区块时间不回退
	if ts.After(c.last) {
		c.last = ts
	}
	return c.last
}
