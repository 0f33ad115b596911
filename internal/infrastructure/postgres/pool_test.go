package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/pkg/config"
)

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "kardex", Password: "secreto", DBName: "kardex", SSLMode: "disable",
		MaxConns: 8, MinConns: 2,
	}
	pc, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "kardex", pc.ConnConfig.Database)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.NotNil(t, pc.ConnConfig.DialFunc)
}

func TestBuildPoolConfig_MinNoSuperaMax(t *testing.T) {
	pc, err := buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@localhost:5432/k?sslmode=disable", MaxConns: 3, MinConns: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(3), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
}

func TestBuildPoolConfig_DSNInvalido(t *testing.T) {
	_, err := buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@localhost:notaport/k"})
	assert.Error(t, err)
}
