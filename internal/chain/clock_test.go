package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	times []uint64
	err   error
}

func (r *fakeReader) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	if number != nil {
		return nil, errors.New("only latest supported")
	}
	if r.err != nil {
		return nil, r.err
	}
	ts := r.times[0]
	if len(r.times) > 1 {
		r.times = r.times[1:]
	}
	return &types.Header{Number: big.NewInt(1), Time: ts}, nil
}

func TestBlockClockFollowsHeaders(t *testing.T) {
	reader := &fakeReader{times: []uint64{1_700_000_000, 1_700_000_012, 1_700_000_005}}
	clock := NewBlockClock(reader, time.Second, nil)

	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), clock.Now())
	assert.Equal(t, time.Unix(1_700_000_012, 0).UTC(), clock.Now())
	assert.Equal(t, time.Unix(1_700_000_012, 0).UTC(), clock.Now(), "must not go backwards")
}

func TestBlockClockFallback(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{err: errors.New("rpc down")}
	clock := NewBlockClock(reader, time.Second, rewards.ClockFunc(func() time.Time { return fixed }))

	assert.Equal(t, fixed, clock.Now())

	reader.err = nil
	reader.times = []uint64{1_700_000_000}
	require.Equal(t, time.Unix(1_700_000_000, 0).UTC(), clock.Now())

	reader.err = errors.New("rpc down again")
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), clock.Now())
}

func TestDialRequiresURL(t *testing.T) {
	_, err := Dial(context.Background(), config.ChainConfig{})
	assert.Error(t, err)
}
