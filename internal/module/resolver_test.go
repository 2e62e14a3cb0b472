package module

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"JeVois/SaveVideo/SaveVideo.so":    {Data: []byte("ELF")},
		"JeVois/PyDemo/PyDemo.py":          {Data: []byte("class PyDemo: pass")},
		"VendorX/Both/Both.so":             {Data: []byte("ELF")},
		"VendorX/Both/Both.py":             {Data: []byte("class Both: pass")},
		"VendorX/Empty/README":             {Data: []byte("no artifact")},
		"VendorY/DirOnly/DirOnly.so/stale": {Data: []byte("")},
		"VendorY/DirOnly/DirOnly.py":       {Data: []byte("class DirOnly: pass")},
	}
}

func TestFSResolver_Resolve(t *testing.T) {
	r := NewFSResolver("/jevois/modules", testTree())

	testCases := []struct {
		name   string
		vendor string
		module string
		want   Kind
	}{
		{"ネイティブ", "JeVois", "SaveVideo", KindNative},
		{"スクリプト", "JeVois", "PyDemo", KindScript},
		{"両方ある場合は.soを優先", "VendorX", "Both", KindNative},
		{"ディレクトリは実装ファイルとみなさない", "VendorY", "DirOnly", KindScript},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := r.Resolve(tc.vendor, tc.module)
			require.NoError(t, err)
			assert.Equal(t, tc.want, kind)
		})
	}
}

func TestFSResolver_NotFound(t *testing.T) {
	r := NewFSResolver("/jevois/modules", testTree())

	_, err := r.Resolve("VendorX", "Empty")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModuleNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "VendorX", nf.Vendor)
	assert.Equal(t, "Empty", nf.Module)
	assert.Equal(t, []string{
		filepath.Join("/jevois/modules", "VendorX", "Empty", "Empty.so"),
		filepath.Join("/jevois/modules", "VendorX", "Empty", "Empty.py"),
	}, nf.Candidates)
	assert.Contains(t, err.Error(), "VendorX/Empty")
}

func TestFSResolver_InvalidName(t *testing.T) {
	r := NewFSResolver("/jevois/modules", testTree())

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := r.Resolve("JeVois", name)
		assert.ErrorIsf(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestNewResolver_OnDisk(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Acme", "Blur")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Blur.py"), []byte("pass"), 0o644))

	r := NewResolver(root)
	assert.Equal(t, root, r.Root())

	kind, err := r.Resolve("Acme", "Blur")
	require.NoError(t, err)
	assert.Equal(t, KindScript, kind)

	_, err = r.Resolve("Acme", "Sharpen")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/jevois/modules", "JeVois", "SaveVideo", "SaveVideo.so"),
		ArtifactPath("/jevois/modules", "JeVois", "SaveVideo", KindNative))
	assert.Equal(t, "JeVois/PyDemo/PyDemo.py", RelPath("JeVois", "PyDemo", KindScript))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "native", KindNative.String())
	assert.Equal(t, "script", KindScript.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "", KindUnknown.Extension())
}
