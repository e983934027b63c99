package database

import (
	"fmt"
	"testing"

	"github.com/blues/rewardcenter/internal/config"
	"github.com/blues/rewardcenter/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSQLite(t *testing.T) {
	db, err := Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	for _, m := range model.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasTable("payout_record"))
}

func TestInitUnknownDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
