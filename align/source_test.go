package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterPipelineRejectsSimilarityFromTabular(t *testing.T) {
	stage, err := NewScoreStage("similarity", Bound{Min: scorePtr(0.9)}, nil)
	require.NoError(t, err)
	_, err = NewFilterPipeline(FormatTabular, stage)
	assert.Error(t, err)
}

func TestNewFilterPipelineAcceptsExpectFromTabular(t *testing.T) {
	stage, err := NewScoreStage("expect", Bound{Max: scorePtr(1e-5)}, nil)
	require.NoError(t, err)
	p, err := NewFilterPipeline(FormatTabular, stage)
	require.NoError(t, err)
	assert.NotEmpty(t, p)
}

func TestNewFilterPipelineRejectsExpectFromExonerate(t *testing.T) {
	stage, err := NewScoreStage("expect", Bound{Max: scorePtr(1e-5)}, nil)
	require.NoError(t, err)
	_, err = NewFilterPipeline(FormatExonerateCigar, stage)
	assert.Error(t, err)
}
