package gap

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	prev := GetLogger()
	SetLogger(NewLogger(l))
	defer SetLogger(prev)

	ComponentLogger("hci").ChildLogger(map[string]interface{}{"handle": 64}).Info("link up")
	assert.Contains(t, buf.String(), "component=hci")
	assert.Contains(t, buf.String(), "handle=64")
	assert.Contains(t, buf.String(), "link up")

	require.NoError(t, SetLogLevel("warn"))
	buf.Reset()
	ComponentLogger("hci").Info("hidden")
	assert.Empty(t, buf.String())

	assert.Error(t, SetLogLevel("loud"))
}
