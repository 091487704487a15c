package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputRouterHook_RoutesByLogType(t *testing.T) {
	var userBuf, opBuf bytes.Buffer

	hook := NewOutputRouterHook()
	hook.UserWriter = &userBuf
	hook.OpWriter = &opBuf
	hook.UserFormatter = &CLIFormatter{DisableTimestamp: true, DisableLevel: true}
	hook.OpFormatter = &CLIFormatter{DisableTimestamp: true, DisableLevel: false, DisableColors: true}

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.AddHook(hook)

	log.WithField("log_type", string(UserLog)).Info("user message")
	log.WithField("log_type", string(OpLog)).Info("op message")

	assert.Equal(t, "user message\n", userBuf.String())
	assert.Contains(t, opBuf.String(), "INFO: op message")
	assert.NotContains(t, userBuf.String(), "op message")
}

func TestOutputRouterHook_PrependsEmoji(t *testing.T) {
	var userBuf bytes.Buffer

	hook := NewOutputRouterHook()
	hook.UserWriter = &userBuf
	hook.OpWriter = &bytes.Buffer{}
	hook.UserFormatter = &CLIFormatter{DisableTimestamp: true, DisableLevel: true}

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.AddHook(hook)

	log.WithFields(logrus.Fields{
		"log_type": string(UserLog),
		"emoji":    "✅",
	}).Info("done")

	assert.Equal(t, "✅ done\n", userBuf.String())
}

func TestCLIFormatter_SkipsRoutingFields(t *testing.T) {
	f := &CLIFormatter{DisableTimestamp: true, DisableLevel: false, DisableColors: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "running",
		Data: logrus.Fields{
			"log_type": "op",
			"task":     "gs",
		},
	}

	out, err := f.Format(entry)

	require.NoError(t, err)
	assert.Contains(t, string(out), "task=gs")
	assert.NotContains(t, string(out), "log_type")
}

func TestSetup_NeverLeavesNilLoggers(t *testing.T) {
	Setup(false, false, false)
	assert.NotNil(t, User)
	assert.NotNil(t, Op)

	Setup(true, true, false)
	assert.NotNil(t, User)
	assert.NotNil(t, Op)
}
