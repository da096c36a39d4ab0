package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9000"
database:
  host: db
  user: news
  password: secret
  dbname: newsroom
jwt:
  secret: 0123456789abcdef0123456789abcdef
cors:
  origins: ["http://example.test"]
`

func TestLoad(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(sampleYAML)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, int64(24), cfg.JWT.Expire)
	assert.Equal(t, []string{"http://example.test"}, cfg.CORS.Origins)
	assert.Equal(t, 3, cfg.Audit.MaxRetry)
	assert.False(t, cfg.OSSEnabled())
	assert.False(t, cfg.PushEnabled())
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:       JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Database:  DatabaseConfig{Host: "h", User: "u", DBName: "d"},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 1},
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.JWT.Secret = "short"
	assert.Error(t, short.Validate())

	noDB := valid
	noDB.Database.Host = ""
	assert.Error(t, noDB.Validate())

	noLimit := valid
	noLimit.RateLimit.Burst = 0
	assert.Error(t, noLimit.Validate())
}
