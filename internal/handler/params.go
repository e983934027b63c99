package handler

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// CallerHeader 调用方地址由钱包/会话层注入
const CallerHeader = "X-Caller-Address"

var errBadParam = errors.New("invalid parameter")

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", errBadParam, name, s)
	}
	return common.HexToAddress(s), nil
}

func callerAddress(c *gin.Context) (common.Address, error) {
	return parseAddress("caller", c.GetHeader(CallerHeader))
}

func pathAddress(c *gin.Context, name string) (common.Address, error) {
	return parseAddress(name, c.Param(name))
}

// parseAmount 解析十进制金额，空串视为 0
func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s %q is not a non-negative integer", errBadParam, name, s)
	}
	return v, nil
}

// maxDurationSec 换算为 time.Duration 不溢出的最大秒数
const maxDurationSec = math.MaxInt64 / int64(time.Second)

// parseDurationSec 将正整数秒换算为时长，超出 time.Duration 范围时拒绝
func parseDurationSec(name string, sec int64) (time.Duration, error) {
	if sec < 1 || sec > maxDurationSec {
		return 0, fmt.Errorf("%w: %s %d out of range [1, %d]", errBadParam, name, sec, maxDurationSec)
	}
	return time.Duration(sec) * time.Second, nil
}

func pathUint(c *gin.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errBadParam, name, c.Param(name))
	}
	return v, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
