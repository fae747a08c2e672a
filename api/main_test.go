package api

import (
	"os"
	"testing"

	"lotto/config"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	os.Exit(m.Run())
}
