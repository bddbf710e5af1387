package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thep200/a11y-miner/cfg"
)

func TestDSN(t *testing.T) {
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	m, _ := NewMysql(config)

	dsn := m.DSN()
	assert.Contains(t, dsn, "root:root@tcp(127.0.0.1:3306)/a11y_miner")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDbDisabled(t *testing.T) {
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	config.Mysql.Enabled = false
	m, _ := NewMysql(config)

	_, err := m.Db()
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, m.Close())
}
