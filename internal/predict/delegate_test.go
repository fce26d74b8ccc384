package predict

import (
	"context"
	"encoding/base64"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestDelegateMissingScriptNoResult(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.py")
	predictor := NewDelegatePredictor(missing, testLogger())

	res, err := predictor.Forecast(context.Background(), someHistory(), Request{Target: 100, Horizon: DefaultHorizonDays})

	require.NoError(t, err, "delegate unavailability is never an error")
	assert.Nil(t, res)
}

func TestParseHelperOutputFullReply(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	stdout := []byte(`{"predicted_date": "2025-04-01T00:00:00Z", "image_base64": "` + image + `"}`)

	res, err := parseHelperOutput(stdout)

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), res.PredictedDate)
	assert.Equal(t, []byte("png-bytes"), res.Chart)
}

func TestParseHelperOutputDateWithoutImage(t *testing.T) {
	stdout := []byte(`{"predicted_date": "2025-04-01T00:00:00Z", "image_base64": null}`)

	res, err := parseHelperOutput(stdout)

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotNil(t, res.Chart)
	assert.Empty(t, res.Chart)
}

func TestParseHelperOutputNullDateNoResult(t *testing.T) {
	stdout := []byte(`{"predicted_date": null, "image_base64": null}`)

	res, err := parseHelperOutput(stdout)

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParseHelperOutputGarbageNoResult(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
	}{
		{"not json", "Traceback (most recent call last): ..."},
		{"unparsable date", `{"predicted_date": "next tuesday"}`},
		{"invalid base64", `{"predicted_date": "2025-04-01T00:00:00Z", "image_base64": "!!!"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseHelperOutput([]byte(tt.stdout))
			require.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}
