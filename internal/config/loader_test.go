package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults_Publish(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 2*time.Second, cfg.Publish.PollInterval)
	assert.Equal(t, 2, cfg.Publish.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Publish.RetryDelay)
	assert.Equal(t, 45*time.Second, cfg.Publish.Timeout)
	assert.Equal(t, 8*time.Second, cfg.Publish.ProbeTimeout)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("NOVEL_FORGE_TEST_PORT", "9090")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"已设置的变量", "port: ${NOVEL_FORGE_TEST_PORT:8080}", "port: 9090"},
		{"未设置取默认值", "host: ${NOVEL_FORGE_TEST_HOST:0.0.0.0}", "host: 0.0.0.0"},
		{"未设置且无默认值保留原样", "key: ${NOVEL_FORGE_TEST_KEY}", "key: ${NOVEL_FORGE_TEST_KEY}"},
		{"无占位符", "name: novel-forge", "name: novel-forge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}
