package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// utf16le encodes an ASCII string as UTF-16 little-endian with BOM.
func utf16le(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, r := range s {
		out = append(out, byte(r), 0x00)
	}
	return out
}

func TestResolve_UTF16LEBOMNeverFallsBack(t *testing.T) {
	res, err := Resolve(utf16le("Jrn.Command"))
	require.NoError(t, err)

	assert.Equal(t, "utf-16le", res.Encoding)
	assert.Equal(t, "Jrn.Command", res.Text)
	assert.False(t, res.FallbackUsed, "BOM detection is deterministic, never a fallback")
}

func TestResolve_UTF16BEBOM(t *testing.T) {
	raw := []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}
	res, err := Resolve(raw)
	require.NoError(t, err)

	assert.Equal(t, "utf-16be", res.Encoding)
	assert.Equal(t, "Hi", res.Text)
	assert.False(t, res.FallbackUsed)
}

func TestResolve_UTF8BOMStripped(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	res, err := Resolve(raw)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", res.Encoding)
	assert.Equal(t, "hello", res.Text)
}

func TestResolve_PlainUTF8Primary(t *testing.T) {
	res, err := Resolve([]byte("'C 27-Sep-2025 13:08:35.485; Error: crash"))
	require.NoError(t, err)

	assert.Equal(t, "utf-8", res.Encoding)
	assert.False(t, res.FallbackUsed)
}

func TestResolve_EmptyInput(t *testing.T) {
	res, err := Resolve(nil)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", res.Encoding)
	assert.Empty(t, res.Text)
}

func TestResolve_LegacyBytesFallBack(t *testing.T) {
	// 0xE8 is "è" in ISO 8859-1 but invalid as standalone UTF-8.
	res, err := Resolve([]byte("caff\xe8"))
	require.NoError(t, err)

	assert.True(t, res.FallbackUsed)
	assert.Equal(t, "latin-1", res.Encoding)
	assert.Equal(t, "caffè", res.Text)
}

func TestResolve_ReplacementArtifactsRejectPrimary(t *testing.T) {
	// A previous bad decode left literal replacement characters; the
	// primary candidate must not accept them.
	res, err := Resolve([]byte("mangled � text"))
	require.NoError(t, err)

	assert.True(t, res.FallbackUsed)
}

func TestResolveWith_Exhausted(t *testing.T) {
	_, err := ResolveWith([]byte("bad \xe8 bytes"), nil)
	require.Error(t, err)

	assert.True(t, IsExhausted(err))
	assert.Contains(t, err.Error(), "utf-8")
}

func TestResolveWith_UnknownFallbackNamesSkipped(t *testing.T) {
	res, err := ResolveWith([]byte("bad \xe8 bytes"), []string{"no-such-codepage", "windows-1252"})
	require.NoError(t, err)

	assert.Equal(t, "windows-1252", res.Encoding)
	assert.True(t, res.FallbackUsed)
}

func TestIsExhausted_WrappedError(t *testing.T) {
	_, err := ResolveWith([]byte{0xe8}, nil)
	require.Error(t, err)

	wrapped := fmtWrap(err)
	assert.True(t, IsExhausted(wrapped))
	assert.False(t, IsExhausted(nil))
}

func fmtWrap(err error) error {
	return &wrapErr{err}
}

type wrapErr struct{ err error }

func (w *wrapErr) Error() string { return "load failed: " + w.err.Error() }
func (w *wrapErr) Unwrap() error { return w.err }
