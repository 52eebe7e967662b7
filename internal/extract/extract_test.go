// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_ReadsPlainFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Patient: John Smith"), 0o600))

	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "Patient: John Smith", text)
}

func TestText_MissingFile(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestFromPDF_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	_, err := FromPDF(path)
	require.Error(t, err)
}

func TestFromReader(t *testing.T) {
	text, err := FromReader(strings.NewReader("discharge summary"))
	require.NoError(t, err)
	assert.Equal(t, "discharge summary", text)
}
