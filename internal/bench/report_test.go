package bench

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

func sweepMetrics() []model.RunMetrics {
	return []model.RunMetrics{
		{Mode: model.ModeStream, Concurrency: 1, DocCount: 2, WallClock: 95 * time.Second, Succeeded: 2},
		{Mode: model.ModeWhole, Concurrency: 2, DocCount: 2, WallClock: 51 * time.Second, Succeeded: 2},
		{Mode: model.ModeStream, Concurrency: 1, DocCount: 4, WallClock: 188 * time.Second, Succeeded: 4},
		{Mode: model.ModeWhole, Concurrency: 4, DocCount: 4, WallClock: 62 * time.Second, Succeeded: 4},
	}
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sweepMetrics(), FormatText)
	require.NoError(t, err)

	want := "SMT = 2\n" +
		"Non Batch: 01min 35sec\n" +
		"Batch: 00min 51sec\n" +
		"\n" +
		"SMT = 4\n" +
		"Non Batch: 03min 08sec\n" +
		"Batch: 01min 02sec\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteReport_TextDefaultFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sweepMetrics(), "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SMT = 2")
}

func TestWriteReport_TextIncludesFailures(t *testing.T) {
	metrics := []model.RunMetrics{
		{Mode: model.ModeStream, Concurrency: 1, DocCount: 4, WallClock: 10 * time.Second, Succeeded: 3, Failed: 1},
		{Mode: model.ModeWhole, Concurrency: 4, DocCount: 4, WallClock: 5 * time.Second, Succeeded: 4},
	}

	var buf bytes.Buffer
	err := WriteReport(&buf, metrics, FormatText)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Failures: non-batch 1/4, batch 0/4")
}

func TestWriteReport_TextUnpairedMetric(t *testing.T) {
	metrics := []model.RunMetrics{
		{Mode: model.ModeWhole, Concurrency: 8, DocCount: 8, WallClock: 30 * time.Second, Succeeded: 8},
	}

	var buf bytes.Buffer
	err := WriteReport(&buf, metrics, FormatText)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "whole (concurrency 8): 00min 30sec, 8/8 ok")
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sweepMetrics(), FormatYAML)
	require.NoError(t, err)

	var decoded []model.RunMetrics
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, model.ModeStream, decoded[0].Mode)
	assert.Equal(t, 2, decoded[1].Concurrency)
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sweepMetrics(), "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}
