package pipeline

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContigsVisitsEach(t *testing.T) {
	contigs := []string{"chr1", "chr2", "chr3"}
	var mu sync.Mutex
	seen := make(map[string]bool)

	err := RunContigs(contigs, func(contig string) error {
		mu.Lock()
		defer mu.Unlock()
		seen[contig] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"chr1": true, "chr2": true, "chr3": true}, seen)
}

func TestRunContigsPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := RunContigs([]string{"chr1", "chr2"}, func(contig string) error {
		if contig == "chr2" {
			return boom
		}
		return nil
	})
	assert.Error(t, err)
}
