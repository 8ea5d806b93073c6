// file: internals/helpers/pagination_test.go
package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseQuery menjalankan ParseFiber lewat handler sungguhan supaya
// pembacaan query string sama persis dengan runtime.
func parseQuery(t *testing.T, rawQuery, defBy, defOrder string, opt Options) Params {
	t.Helper()

	var got Params
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		got = ParseFiber(c, defBy, defOrder, opt)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/items"+rawQuery, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return got
}

func TestParseFiber(t *testing.T) {
	custom := Options{DefaultPerPage: 10, MaxPerPage: 50, AllowAll: true} // AllHardCap 0

	cases := []struct {
		name     string
		query    string
		defBy    string
		defOrder string
		opt      Options
		want     Params
	}{
		{
			name:     "tanpa query pakai default",
			query:    "",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "page dan per_page dibaca",
			query:    "?page=3&per_page=40",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 3, PerPage: 40, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "per_page di atas max dipangkas",
			query:    "?per_page=9999",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 200, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "limit sebagai alias lama",
			query:    "?limit=10",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 10, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "per_page menang atas limit",
			query:    "?per_page=15&limit=99",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 15, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "page nol kembali ke satu",
			query:    "?page=0&per_page=abc",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "order dinormalkan ke huruf kecil",
			query:    "?order=ASC",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "asc"},
		},
		{
			name:     "sort sebagai alias order",
			query:    "?sort=asc",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "asc"},
		},
		{
			name:     "order tidak dikenal jatuh ke default",
			query:    "?order=menaik",
			defBy:    "created_at",
			defOrder: "asc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "asc"},
		},
		{
			name:     "default order rusak jatuh ke desc",
			query:    "",
			defBy:    "created_at",
			defOrder: "terbaru",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "sort_by dari query dipakai",
			query:    "?sort_by=title",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 1, PerPage: 25, SortBy: "title", SortOrder: "desc"},
		},
		{
			name:     "per_page=all saat diizinkan memaksa halaman satu",
			query:    "?per_page=all&page=7",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      ExportOpts,
			want:     Params{Page: 1, PerPage: 10_000, SortBy: "created_at", SortOrder: "desc", All: true},
		},
		{
			name:     "per_page=all tanpa izin dianggap angka tidak valid",
			query:    "?per_page=all&page=2",
			defBy:    "created_at",
			defOrder: "desc",
			opt:      DefaultOpts,
			want:     Params{Page: 2, PerPage: 25, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "all tanpa hard cap memakai max",
			query:    "?per_page=all",
			defBy:    "name",
			defOrder: "asc",
			opt:      custom,
			want:     Params{Page: 1, PerPage: 50, SortBy: "name", SortOrder: "asc", All: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseQuery(t, tc.query, tc.defBy, tc.defOrder, tc.opt)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParamsLimitOffset(t *testing.T) {
	p := Params{Page: 3, PerPage: 20}
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 40, p.Offset())

	first := Params{Page: 1, PerPage: 25}
	assert.Equal(t, 0, first.Offset())
}

func TestSafeOrderClause(t *testing.T) {
	allowed := map[string]string{
		"created_at": "a.created_at",
		"title":      "a.title",
	}

	t.Run("kolom whitelist dipakai apa adanya", func(t *testing.T) {
		p := Params{SortBy: "title", SortOrder: "asc"}
		clause, err := p.SafeOrderClause(allowed, "created_at")
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY a.title ASC", clause)
	})

	t.Run("arah selain asc selalu DESC", func(t *testing.T) {
		p := Params{SortBy: "created_at", SortOrder: ""}
		clause, err := p.SafeOrderClause(allowed, "created_at")
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY a.created_at DESC", clause)
	})

	t.Run("kunci liar jatuh ke default", func(t *testing.T) {
		p := Params{SortBy: "title; DROP TABLE assignments", SortOrder: "desc"}
		clause, err := p.SafeOrderClause(allowed, "created_at")
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY a.created_at DESC", clause)
	})

	t.Run("sort_by kosong memakai default", func(t *testing.T) {
		p := Params{SortOrder: "asc"}
		clause, err := p.SafeOrderClause(allowed, "title")
		require.NoError(t, err)
		assert.Equal(t, "ORDER BY a.title ASC", clause)
	})

	t.Run("default yang tidak ada di whitelist gagal", func(t *testing.T) {
		p := Params{SortBy: "salah"}
		_, err := p.SafeOrderClause(allowed, "updated_at")
		assert.Error(t, err)
	})
}

func TestBuildMeta(t *testing.T) {
	base := Params{Page: 1, PerPage: 25}

	t.Run("total nol", func(t *testing.T) {
		meta := BuildMeta(0, base)
		assert.Equal(t, 0, meta.TotalPages)
		assert.False(t, meta.HasNext)
		assert.False(t, meta.HasPrev)
		assert.Nil(t, meta.NextPage)
		assert.Nil(t, meta.PrevPage)
	})

	t.Run("halaman pertama dari lima", func(t *testing.T) {
		meta := BuildMeta(101, base)
		assert.Equal(t, 5, meta.TotalPages)
		assert.True(t, meta.HasNext)
		assert.False(t, meta.HasPrev)
		require.NotNil(t, meta.NextPage)
		assert.Equal(t, 2, *meta.NextPage)
		assert.Nil(t, meta.PrevPage)
	})

	t.Run("halaman tengah punya dua arah", func(t *testing.T) {
		p := Params{Page: 3, PerPage: 25}
		meta := BuildMeta(101, p)
		require.NotNil(t, meta.PrevPage)
		require.NotNil(t, meta.NextPage)
		assert.Equal(t, 2, *meta.PrevPage)
		assert.Equal(t, 4, *meta.NextPage)
	})

	t.Run("halaman terakhir tanpa next", func(t *testing.T) {
		p := Params{Page: 5, PerPage: 25}
		meta := BuildMeta(101, p)
		assert.False(t, meta.HasNext)
		assert.Nil(t, meta.NextPage)
		assert.True(t, meta.HasPrev)
		assert.Equal(t, int64(101), meta.Total)
	})

	t.Run("total pas habis dibagi", func(t *testing.T) {
		p := Params{Page: 2, PerPage: 25}
		meta := BuildMeta(50, p)
		assert.Equal(t, 2, meta.TotalPages)
		assert.False(t, meta.HasNext)
		assert.True(t, meta.HasPrev)
	})
}
