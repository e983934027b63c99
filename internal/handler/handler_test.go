package handler

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{rewards.ErrUnauthorized, http.StatusForbidden},
		{rewards.ErrPlanNotFound, http.StatusNotFound},
		{rewards.ErrUnknownClient, http.StatusNotFound},
		{rewards.ErrDuplicateClient, http.StatusConflict},
		{rewards.ErrInvalidStage, http.StatusConflict},
		{rewards.ErrNotExpired, http.StatusConflict},
		{rewards.ErrWrongPledgeAmount, http.StatusBadRequest},
		{rewards.ErrIndexOutOfRange, http.StatusBadRequest},
		{fmt.Errorf("%w: caller", errBadParam), http.StatusBadRequest},
		{fmt.Errorf("获取计划失败: %w", rewards.ErrPlanNotFound), http.StatusNotFound},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorStatus(tc.err), tc.err.Error())
	}
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("value", "")
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	v, err = parseAmount("value", "1000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", v.String())

	for _, bad := range []string{"-1", "1.5", "0x10", "abc"} {
		_, err = parseAmount("value", bad)
		assert.ErrorIs(t, err, errBadParam, bad)
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("caller", "0x1000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0x1000000000000000000000000000000000000001", addr.Hex())

	_, err = parseAddress("caller", "")
	assert.ErrorIs(t, err, errBadParam)
	_, err = parseAddress("caller", "0x12")
	assert.ErrorIs(t, err, errBadParam)
}

func TestParseDurationSec(t *testing.T) {
	d, err := parseDurationSec("nonRefundableDurationSec", 3600)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = parseDurationSec("nonRefundableDurationSec", maxDurationSec)
	require.NoError(t, err)
	assert.Positive(t, d)

	for _, bad := range []int64{0, -1, maxDurationSec + 1, 9300000000, math.MaxInt64} {
		_, err = parseDurationSec("nonRefundableDurationSec", bad)
		assert.ErrorIs(t, err, errBadParam, bad)
	}
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query      string
		page, size int
	}{
		{"", 1, 20},
		{"?page=3&page_size=5", 3, 5},
		{"?page=0&page_size=500", 1, 20},
		{"?page=x&page_size=y", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
		page, size := pageParams(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.size, size, tc.query)
	}
}

func TestNewPagination(t *testing.T) {
	p := newPagination(2, 20, 41)
	assert.Equal(t, int64(3), p.TotalPage)
	assert.Equal(t, int64(0), newPagination(1, 20, 0).TotalPage)
}
