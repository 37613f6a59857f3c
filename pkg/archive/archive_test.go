package archive_test

import (
	"os"
	"path/filepath"
	"testing"

	"resolver/pkg/archive"
	"resolver/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme GmbH", "Acme_GmbH"},
		{"Müller & Söhne GmbH & Co. KG", "Mller__Shne_GmbH__Co_KG"},
		{"  Adler Real Estate Aktiengesellschaft  ", "Adler_Real_Estate_Aktiengesell"},
		{"a/b\\c", "abc"},
		{"///", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, archive.SafeName(tc.in), "SafeName(%q)", tc.in)
	}
}

func TestSaveDocument(t *testing.T) {
	root := t.TempDir()
	a := archive.New(root)

	pdfPath, err := a.SaveDocument("Acme GmbH", domain.DocumentTypeAD, []byte("%PDF-1.7"), "# Acme")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("Acme_GmbH", "Acme_GmbH_AD.pdf"), pdfPath)

	pdfData, err := os.ReadFile(filepath.Join(root, pdfPath))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(pdfData))

	md, err := os.ReadFile(filepath.Join(root, "Acme_GmbH", "Acme_GmbH_AD.md"))
	require.NoError(t, err)
	require.Equal(t, "# Acme", string(md))
}

func TestSaveDocumentUnnameableCompany(t *testing.T) {
	a := archive.New(t.TempDir())

	pdfPath, err := a.SaveDocument("///", domain.DocumentTypeCD, []byte("%PDF"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("unnamed", "unnamed_CD.pdf"), pdfPath)
}
