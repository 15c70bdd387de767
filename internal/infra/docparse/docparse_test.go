package docparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archgram/archgram/internal/domain/pipeline"
)

func TestText_PlainFormatsPassThrough(t *testing.T) {
	out, err := Text("notes.txt", []byte("  ALB fronts the app tier.  \n"))
	require.NoError(t, err)
	assert.Equal(t, "ALB fronts the app tier.", out)

	out, err = Text("DESIGN.MD", []byte("# Architecture\nqueue feeds workers"))
	require.NoError(t, err)
	assert.Contains(t, out, "queue feeds workers")
}

func TestText_EmptyDocument(t *testing.T) {
	_, err := Text("notes.txt", []byte("   "))
	assert.ErrorIs(t, err, pipeline.ErrInputInvalid)
}

func TestText_UnsupportedType(t *testing.T) {
	_, err := Text("diagram.png", []byte{1, 2, 3})
	assert.ErrorIs(t, err, pipeline.ErrInputInvalid)
}

func TestText_UnreadablePDF(t *testing.T) {
	_, err := Text("broken.pdf", []byte("not really a pdf"))
	assert.ErrorIs(t, err, pipeline.ErrInputInvalid)
}
