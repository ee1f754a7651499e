package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uno-score-bot/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, []string{"Player1", "Player2", "Player3"}, cfg.Scorebook.Players)
	assert.Equal(t, model.DefaultVariant, cfg.Scorebook.Variant())
	assert.Equal(t, 10, cfg.Scorebook.RecentLimit)
	assert.True(t, cfg.Storage.PostgresEnabled)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
scorebook:
  players: [Aki, Ben]
  default_variant: 普通
  timezone: Europe/Berlin
admin:
  ids: [42]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("BOT_TOKEN", "secret")
	t.Setenv("DATABASE_PORT", "6543")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Bot.Token)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []string{"Aki", "Ben"}, cfg.Scorebook.Players)
	assert.Equal(t, model.VariantNormal, cfg.Scorebook.Variant())
	assert.Equal(t, "Europe/Berlin", cfg.Scorebook.Location().String())
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestLoad_RejectsShortRoster(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scorebook:\n  players: [Solo]\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Scorebook: ScorebookConfig{Players: []string{"A", "B"}}}
	require.NoError(t, cfg.Validate())

	cfg.Scorebook.Players = []string{"A", "A"}
	assert.Error(t, cfg.Validate())

	cfg.Scorebook.Players = []string{"A", " "}
	assert.Error(t, cfg.Validate())

	cfg.Scorebook.Players = []string{"A", "B"}
	cfg.RateLimit.Burst = -1
	assert.ErrorContains(t, cfg.Validate(), "ratelimit")
}

func TestIsChatAllowed(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsChatAllowed(1))
	assert.True(t, cfg.IsAdmin(1))

	cfg.Whitelist.Chats = []int64{-100}
	assert.True(t, cfg.IsChatAllowed(-100))
	assert.False(t, cfg.IsChatAllowed(1))
}

func TestScorebookConfig_BadTimezoneFallsBack(t *testing.T) {
	s := ScorebookConfig{Timezone: "Nowhere/Atlantis", DefaultVariant: "bogus"}
	assert.Equal(t, time.UTC, s.Location())
	assert.Equal(t, model.DefaultVariant, s.Variant())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 1, Name: "n"}
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", d.DSN())
}
