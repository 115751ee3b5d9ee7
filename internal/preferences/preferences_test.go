package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/kvstore"
)

func TestLoadDefaults(t *testing.T) {
	s := Load(context.Background(), kvstore.NewMemoryStore(), nil)
	assert.Equal(t, Preferences{Language: Spanish, ThemeMode: Light, ThemeColor: Blue}, s.Get())
}

func TestLoadCorruptFallsBack(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), kvstore.KeyPreferences, "{nope"))
	assert.Equal(t, Default(), Load(context.Background(), kv, nil).Get())
}

func TestLoadFillsMissingFields(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), kvstore.KeyPreferences, `{"themeMode":"dark","themeColor":"pink"}`))
	assert.Equal(t, Preferences{Language: Spanish, ThemeMode: Dark, ThemeColor: Blue}, Load(context.Background(), kv, nil).Get())
}

func TestSettersPersistWholeRecord(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := Load(ctx, kv, nil)

	require.NoError(t, s.SetLanguage(ctx, English))
	require.NoError(t, s.SetThemeMode(ctx, Dark))
	require.NoError(t, s.SetThemeColor(ctx, Purple))

	raw, ok, err := kv.Get(ctx, kvstore.KeyPreferences)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"language":"en","themeMode":"dark","themeColor":"purple"}`, raw)

	assert.Equal(t, s.Get(), Load(ctx, kv, nil).Get())
}

func TestSetByName(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, kvstore.NewMemoryStore(), nil)

	require.NoError(t, s.Set(ctx, KeyThemeColor, "green"))
	assert.Equal(t, Green, s.Get().ThemeColor)

	assert.ErrorIs(t, s.Set(ctx, KeyLanguage, "fr"), ErrInvalidValue)
	assert.ErrorIs(t, s.Set(ctx, "font", "big"), ErrUnknownKey)
	assert.Equal(t, Spanish, s.Get().Language)
}
