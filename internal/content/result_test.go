package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecryptReportSucceeded(t *testing.T) {
	var r DecryptReport
	require.False(t, r.Succeeded(), "empty report is not successful")

	r.Add(ContentOutcome{ContentID: "00000000", Skipped: true})
	require.False(t, r.Succeeded(), "only-skipped report is not successful")

	r.Add(ContentOutcome{ContentID: "00000001", BytesWritten: 100})
	require.True(t, r.Succeeded())
}

func TestDecryptReportMismatchCount(t *testing.T) {
	var r DecryptReport
	r.Add(ContentOutcome{ContentID: "a", ChunkMismatch: 2})
	r.Add(ContentOutcome{ContentID: "b", HashMismatch: true})
	r.Add(ContentOutcome{ContentID: "c"})
	require.Equal(t, 3, r.MismatchCount())
}

func TestDecryptReportWithErrors(t *testing.T) {
	var r DecryptReport
	r.Add(ContentOutcome{ContentID: "a", Err: errors.New("boom")})
	require.False(t, r.Succeeded())
}
