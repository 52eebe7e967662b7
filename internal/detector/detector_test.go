// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocContext(t *testing.T) {
	a := NewDocContext("Patient: John Smith")
	b := NewDocContext("Patient: John Smith")

	assert.NotEmpty(t, a.DocumentID)
	assert.NotEqual(t, a.DocumentID, b.DocumentID)
	assert.NotEmpty(t, a.Chaos.Quality)
}

func TestMemo_ComputesOnce(t *testing.T) {
	dc := NewDocContext("text")
	calls := 0
	compute := func() interface{} {
		calls++
		return 42
	}

	assert.Equal(t, 42, dc.Memo("answer", compute))
	assert.Equal(t, 42, dc.Memo("answer", compute))
	assert.Equal(t, 1, calls)
}

func TestMemo_ConcurrentFirstUse(t *testing.T) {
	dc := NewDocContext("text")
	var calls int32

	var wg sync.WaitGroup
	results := make([]interface{}, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = dc.Memo("shared", func() interface{} {
				atomic.AddInt32(&calls, 1)
				return "value"
			})
		}(i)
	}
	wg.Wait()

	// Races may recompute, but every caller sees the same stored value.
	for _, r := range results {
		assert.Equal(t, "value", r)
	}
	require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestHasKeywordNear(t *testing.T) {
	doc := "Fax: 555-123-4567 on file"
	assert.True(t, HasKeywordNear(doc, 5, 17, 10, []string{"fax"}))
	assert.False(t, HasKeywordNear(doc, 5, 17, 2, []string{"phone"}))

	// Window clamps at document edges.
	assert.True(t, HasKeywordNear(doc, 0, 3, 100, []string{"file"}))
}

func TestLineOf(t *testing.T) {
	doc := "first line\nPatient: John Smith\nlast line"
	assert.Equal(t, "Patient: John Smith", LineOf(doc, 20, 30))
	assert.Equal(t, "first line", LineOf(doc, 0, 5))
	assert.Equal(t, "last line", LineOf(doc, 32, 36))
}
