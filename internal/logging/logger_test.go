package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	closer := Setup(Options{Level: "debug", File: path})
	defer func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetReportCaller(false)
	}()

	logrus.WithField("wallet_id", 3).Debug("Wallet created")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "Wallet created", line["message"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, float64(3), line["wallet_id"])
	assert.Contains(t, line, "timestamp")
	assert.Contains(t, line["module"], "TestSetupWritesJSONToRotatingFile")
	assert.Regexp(t, `logger_test\.go:\d+$`, line["line"])
}

func TestSetupFallsBackToInfo(t *testing.T) {
	closer := Setup(Options{Level: "chatty"})
	defer logrus.SetOutput(os.Stderr)

	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.NoError(t, closer.Close())
}
