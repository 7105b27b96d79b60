package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaero/internal/models"
	"github.com/ternarybob/quaero/internal/services/embeddings"
)

func fullConfig() *models.PipelineConfig {
	return &models.PipelineConfig{
		Steps: []string{
			models.StepCleaner, models.StepLineFilter, models.StepSplitter,
			models.StepExtractor, models.StepClassifier, models.StepAggregator,
		},
		KeywordsTech: map[string][]string{"languages": {"Go"}},
		ClassifierForeigner: models.ClassifierConfig{
			Classes: map[string][]string{"ok": {"remote ok"}},
			Dedupe:  true,
		},
	}
}

func TestNew_OmitsStagesNotInStepList(t *testing.T) {
	cfg := &models.PipelineConfig{Steps: []string{models.StepAggregator}}
	svc, err := New(cfg, nil, nil, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, svc.cleaner)
	assert.Nil(t, svc.lineFilter)
	assert.Nil(t, svc.semantic)
	assert.Nil(t, svc.splitter)
	assert.NotNil(t, svc.aggregator)
}

func TestProcessMessage_NoSplitterProducesSingleBlock(t *testing.T) {
	cfg := &models.PipelineConfig{
		Steps:        []string{models.StepCleaner, models.StepExtractor, models.StepAggregator},
		KeywordsTech: map[string][]string{"languages": {"Go"}},
	}
	svc, err := New(cfg, nil, nil, 0, nil)
	require.NoError(t, err)

	result := svc.ProcessMessage(context.Background(), models.EmailMessage{
		SourcePath: "msg1", Body: "<p>Go developer wanted</p>",
	})

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Go developer wanted", result.Blocks[0].Text)
	assert.Contains(t, result.Aggregation.KeywordSummary, "languages")
}

func TestProcessMessage_EmptyBodyProducesNoBlocks(t *testing.T) {
	cfg := &models.PipelineConfig{Steps: []string{models.StepCleaner, models.StepAggregator}}
	svc, err := New(cfg, nil, nil, 0, nil)
	require.NoError(t, err)

	result := svc.ProcessMessage(context.Background(), models.EmailMessage{SourcePath: "msg1", Body: "   "})
	assert.Empty(t, result.Blocks)
}

func TestProcessMessage_WithSplitterMarkers(t *testing.T) {
	cfg := fullConfig()
	svc, err := New(cfg, nil, []string{`^### `}, 1, nil)
	require.NoError(t, err)

	body := "header1\nheader2\nheader3\n### Job A\nGo role, remote ok\n### Job B\nPython role"
	result := svc.ProcessMessage(context.Background(), models.EmailMessage{SourcePath: "msg1", Body: body})

	require.Len(t, result.Blocks, 2)
	assert.Contains(t, result.Blocks[0].Text, "Job A")
}

func TestProcessMessages_BatchedMatchesPerMessageForNonSemanticOutputs(t *testing.T) {
	cfg := fullConfig()

	svc, err := New(cfg, nil, []string{`^### `}, 1, nil)
	require.NoError(t, err)

	msgs := []models.EmailMessage{
		{SourcePath: "a", Body: "header1\nheader2\nheader3\n### Job A\nGo role, remote ok"},
		{SourcePath: "b", Body: "header1\nheader2\nheader3\n### Job B\nPython role"},
	}

	run := svc.ProcessMessages(context.Background(), msgs)
	require.Len(t, run.Results, 2)

	for i, msg := range msgs {
		single := svc.ProcessMessage(context.Background(), msg)
		assert.Equal(t, single.Blocks, run.Results[i].Blocks)
		assert.Equal(t, single.Aggregation, run.Results[i].Aggregation)
	}

	assert.Equal(t, 2, run.Summary.MessageCount)
}

func TestProcessMessage_SemanticDowngradesOnUnavailableProvider(t *testing.T) {
	cfg := &models.PipelineConfig{
		Steps: []string{models.StepCleaner, models.StepSemantic, models.StepAggregator},
		SemanticTemplates: models.SemanticTemplatesConfig{
			Global:          []string{"job template"},
			GlobalThreshold: 0.5,
			BatchSize:       4,
		},
	}
	provider := embeddings.NewFakeProvider(4).Unavailable(true)
	svc, err := New(cfg, provider, nil, 0, nil)
	require.NoError(t, err)

	result := svc.ProcessMessage(context.Background(), models.EmailMessage{SourcePath: "msg1", Body: "some body text"})
	assert.Nil(t, result.Semantic)
	assert.Empty(t, result.Error)
}

func TestProcessMessages_EmptyInput(t *testing.T) {
	cfg := fullConfig()
	svc, err := New(cfg, nil, nil, 0, nil)
	require.NoError(t, err)

	run := svc.ProcessMessages(context.Background(), nil)
	assert.Empty(t, run.Results)
	assert.Equal(t, 0, run.Summary.MessageCount)
}
