// file: internals/helpers/kvstore/store_test.go
package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "kosong")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	// overwrite
	require.NoError(t, m.Set(ctx, "k", "v2", 0))
	v, _, _ = m.Get(ctx, "k")
	assert.Equal(t, "v2", v)
}

func TestMemory_TTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "sebentar", "x", 30*time.Millisecond))
	require.NoError(t, m.Set(ctx, "abadi", "y", 0)) // ttl 0 = tanpa kedaluwarsa

	_, ok, _ := m.Get(ctx, "sebentar")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok, _ = m.Get(ctx, "sebentar")
	assert.False(t, ok, "entry ber-TTL harus hangus")
	_, ok, _ = m.Get(ctx, "abadi")
	assert.True(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)

	// delete key tak dikenal tidak error
	assert.NoError(t, m.Delete(ctx, "tidak-ada"))
}

func TestMemory_GetDelOneShot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "sekali", "pakai", time.Minute))

	v, ok, err := m.GetDel(ctx, "sekali")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pakai", v)

	// pembacaan kedua selalu absen
	_, ok, _ = m.GetDel(ctx, "sekali")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "sekali")
	assert.False(t, ok)
}

/* ===================== Safe ===================== */

// brokenStore selalu gagal; Safe harus menelan error jadi no-op.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend tumbang")
}

func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("backend tumbang")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("backend tumbang")
}

func (brokenStore) GetDel(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend tumbang")
}

func TestSafe_SwallowsBackendErrors(t *testing.T) {
	s := NewSafe(brokenStore{})
	ctx := context.Background()

	// tidak ada panic, tidak ada error keluar: cukup "tidak ada data"
	s.Set(ctx, "k", "v", time.Minute)
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
	_, ok = s.GetDel(ctx, "k")
	assert.False(t, ok)
	s.Delete(ctx, "k")
}

func TestSafe_JSONRoundTrip(t *testing.T) {
	s := NewSafe(NewMemory())
	ctx := context.Background()

	type payload struct {
		Role string `json:"role"`
		N    int    `json:"n"`
	}

	s.SetJSON(ctx, "p", payload{Role: "teacher", N: 7}, time.Minute)

	var out payload
	require.True(t, s.GetJSON(ctx, "p", &out))
	assert.Equal(t, payload{Role: "teacher", N: 7}, out)

	// absen
	assert.False(t, s.GetJSON(ctx, "tidak-ada", &out))

	// payload korup bukan alasan panic
	s.Set(ctx, "korup", "{bukan-json", time.Minute)
	assert.False(t, s.GetJSON(ctx, "korup", &out))
}

func TestSafe_SetJSONUnmarshalableValue(t *testing.T) {
	s := NewSafe(NewMemory())
	ctx := context.Background()

	// chan tidak bisa di-marshal: harus jadi no-op, bukan panic
	s.SetJSON(ctx, "aneh", make(chan int), time.Minute)
	_, ok := s.Get(ctx, "aneh")
	assert.False(t, ok)
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "kelasku:session:abc", SessionKey("abc"))
	assert.Equal(t, "kelasku:redirect:dev-1", RedirectKey("dev-1"))
	assert.Equal(t, "kelasku:snapshot:abc", SnapshotKey("abc"))
}
