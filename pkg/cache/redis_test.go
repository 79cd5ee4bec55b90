package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/pkg/config"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{name: "host and port", cfg: config.RedisConfig{Host: "cache", Port: 6380, DB: 2}, wantAddr: "cache:6380", wantDB: 2},
		{name: "url wins", cfg: config.RedisConfig{URL: "redis://localhost:6379/3", Host: "ignored"}, wantAddr: "localhost:6379", wantDB: 3},
		{name: "bad url", cfg: config.RedisConfig{URL: "http://nope"}, wantErr: true},
		{name: "empty", cfg: config.RedisConfig{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Options(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}
	_, err := NewRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 59999})
	assert.Error(t, err)
}
