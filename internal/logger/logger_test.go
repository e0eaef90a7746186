package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		description string
		mode        string
		level       string
		expectErr   bool
	}{
		{description: "development", mode: "dev"},
		{description: "production with level", mode: "prod", level: "warn"},
		{description: "quiet", mode: "quiet"},
		{description: "invalid level", mode: "dev", level: "loud", expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := New(testCase.mode, testCase.level)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		if assert.NoError(t, err, testCase.description) {
			assert.NotNil(t, actual.SugaredLogger, testCase.description)
		}
	}
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}
	log.With("module", "engage").Warn("stale curated entry", "flow", "ENGAGE_002")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "stale curated entry", entries[0].Message)
		assert.Equal(t, map[string]interface{}{"module": "engage", "flow": "ENGAGE_002"}, entries[0].ContextMap())
	}
}
