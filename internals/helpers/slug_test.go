package helper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{name: "nama biasa", in: "Budi Santoso", maxLen: 100, want: "budi-santoso"},
		{name: "diakritik dihapus", in: "Café Ménü", maxLen: 100, want: "cafe-menu"},
		{name: "simbol jadi satu strip", in: "Kelas 7A / IPA!!", maxLen: 100, want: "kelas-7a-ipa"},
		{name: "strip beruntun dikompres", in: "a___b!!c", maxLen: 100, want: "a-b-c"},
		{name: "strip di ujung dibuang", in: "--halo--", maxLen: 100, want: "halo"},
		{name: "spasi saja", in: "   ", maxLen: 100, want: "item"},
		{name: "simbol saja", in: "***", maxLen: 100, want: "item"},
		{name: "dipotong sesuai batas", in: "abcde", maxLen: 3, want: "abc"},
		{name: "potongan tidak berakhir strip", in: "ab-cdef", maxLen: 3, want: "ab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in, tc.maxLen))
		})
	}

	t.Run("maxLen nol memakai default 100", func(t *testing.T) {
		got := Slugify(strings.Repeat("a", 150), 0)
		assert.Len(t, got, 100)
	})
}
