package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReporterQuietSkipsBar(t *testing.T) {
	r := NewReporter(true)
	require.True(t, r.quiet)
	require.Nil(t, r.progress)

	// None of these should panic even though no bar was created.
	r.SetStatus("loading")
	r.SetProgress(0.5, "1/2")
	r.Update()
	r.Wait()
}

func TestReporterTracksStatusAndProgress(t *testing.T) {
	r := NewReporter(true)
	r.SetStatus("decrypting")
	require.Equal(t, "decrypting", r.status)

	r.SetProgress(0.25, "1/4")
	require.InDelta(t, 0.25, r.fraction, 0.0001)
	require.Equal(t, "1/4", r.info)
}

func TestReporterCancel(t *testing.T) {
	r := NewReporter(true)
	require.False(t, r.IsCancelled())
	r.Cancel()
	require.True(t, r.IsCancelled())
}

func TestParseTitleKeyHex(t *testing.T) {
	key, err := ParseTitleKeyHex("D7B00402659BA2ABD2CB0DB27FA2B656")
	require.NoError(t, err)
	require.Len(t, key, 16)

	key, err = ParseTitleKeyHex("  d7b00402659ba2abd2cb0db27fa2b656\n")
	require.NoError(t, err)
	require.Len(t, key, 16)
}

func TestParseTitleKeyHexRejectsBadInput(t *testing.T) {
	_, err := ParseTitleKeyHex("not-hex")
	require.Error(t, err)

	_, err = ParseTitleKeyHex("D7B004")
	require.ErrorIs(t, err, ErrTitleKeyLength)
}

func TestDecryptCommandRequiresExistingDir(t *testing.T) {
	err := runDecrypt(decryptCmd, []string{"/no/such/directory"})
	require.Error(t, err)
}

func TestExtractCommandRequiresExistingDir(t *testing.T) {
	err := runExtract(extractCmd, []string{"/no/such/directory"})
	require.Error(t, err)
}

func TestTicketPresentFalseForEmptyDir(t *testing.T) {
	require.False(t, ticketPresent(t.TempDir()))
}
