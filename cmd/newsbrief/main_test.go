package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/pipeline"
	"github.com/spetersoncode/newsbrief/report"
)

func TestParseFlags(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	t.Run("daily defaults", func(t *testing.T) {
		o, err := parseFlags(nil, now)
		require.NoError(t, err)
		assert.Equal(t, pipeline.ModeDaily, o.mode)
		assert.Equal(t, now, o.to)
		assert.Equal(t, now.Add(-24*time.Hour), o.from)
		assert.Equal(t, publishStdout, o.publish)
		assert.False(t, o.summarize)
	})

	t.Run("weekly window", func(t *testing.T) {
		o, err := parseFlags([]string{"-mode", "weekly", "-to", "2026-10-12"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), o.to)
		assert.Equal(t, time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC), o.from)
	})

	t.Run("explicit window", func(t *testing.T) {
		o, err := parseFlags([]string{"-from", "2026-10-01", "-to", "2026-10-03", "-publish", "s3", "-summarize"}, now)
		require.NoError(t, err)
		assert.Equal(t, 2, int(o.to.Sub(o.from).Hours()/24))
		assert.Equal(t, publishS3, o.publish)
		assert.True(t, o.summarize)
	})

	errs := []struct {
		name string
		args []string
	}{
		{"unknown mode", []string{"-mode", "monthly"}},
		{"unknown target", []string{"-publish", "ftp"}},
		{"bad date", []string{"-from", "10/01/2026"}},
		{"empty window", []string{"-from", "2026-10-03", "-to", "2026-10-03"}},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, now)
			assert.Error(t, err)
		})
	}
}

func TestReadArticles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	data := `[{"id": 3, "title": "Central bank cuts policy rate", "type": "domestic", "publishedAt": "2026-10-15T08:00:00Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	articles, err := readArticles(path)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, int64(3), articles[0].ID)
	assert.Equal(t, nb.NewsDomestic, articles[0].Type)
}

func TestReadArticlesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":`), 0o644))

	_, err := readArticles(path)

	assert.Error(t, err)
}

func TestWriterPublisher(t *testing.T) {
	var buf bytes.Buffer
	d := report.Build(&pipeline.Result{
		Mode:        pipeline.ModeDaily,
		GeneratedAt: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Top:         map[nb.NewsType][]int64{},
	})

	loc, err := writerPublisher{w: &buf}.Publish(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, "stdout", loc)
	assert.Contains(t, buf.String(), d.ID)
}
