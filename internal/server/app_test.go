package server

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "test-secret"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.BcryptCost = bcrypt.MinCost
	c.RunMigrations = false
	return c
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, app.resolver)
	assert.NotNil(t, app.accounts)
	require.NoError(t, app.db.Close())
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"log backend", func(c *config.Config) { c.LogBackend = "logrus" }},
		{"empty secret", func(c *config.Config) { c.SecretKey = "" }},
		{"bcrypt cost", func(c *config.Config) { c.BcryptCost = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)
			_, err := NewApp(c)
			assert.Error(t, err)
		})
	}
}

func TestRun_ReturnsWhenContextCancelled(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, app.Run(ctx))
}
