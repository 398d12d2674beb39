package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConnectionString(t *testing.T) {
	dsn, err := GenerateConnectionString("db", "sync", "p@ss word", "sync", "disable", 5432, 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t,
		"host=db port=5432 user=sync password='p@ss word' dbname=sync sslmode=disable application_name=struct-commerce-sync connect_timeout=5 pool_max_conns=10",
		dsn)
}

func TestGenerateConnectionString_Validation(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		port    int
		sslMode string
		pool    int
		want    error
	}{
		{name: "пустой хост", host: "", port: 5432, sslMode: "disable", want: ErrStorageEmptyHostName},
		{name: "порт", host: "db", port: 70000, sslMode: "disable", want: ErrStorageInvalidPortNumber},
		{name: "sslmode", host: "db", port: 5432, sslMode: "maybe", want: ErrStorageInvalidSslMode},
		{name: "пул", host: "db", port: 5432, sslMode: "require", pool: -1, want: ErrStorageInvalidPoolSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateConnectionString(tt.host, "u", "p", "d", tt.sslMode, tt.port, tt.pool, 0)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
