package guildstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentDefaults(t *testing.T) {
	doc := NewDocument()
	assert.Empty(t, doc.Warnings)
	assert.Nil(t, doc.Welcome.ChannelID)
	assert.Equal(t, DefaultWelcomeMessage, doc.Welcome.Message)
	assert.False(t, doc.Welcome.Embed)
	assert.Nil(t, doc.AutoRole.Member)
	assert.Nil(t, doc.AutoRole.Bot)
	assert.Nil(t, doc.MutedRole)
	assert.Empty(t, doc.ImageMuted)
	assert.Empty(t, doc.ReactionRoles)
	for _, cat := range LogCategories {
		_, ok := doc.Logs.Channel(cat)
		assert.False(t, ok, "fresh guild should have no %v log", cat)
	}
}

func TestDefaultShapeCoversEveryKey(t *testing.T) {
	shape := defaultShape()
	for _, key := range []string{"warnings", "welcome", "auto_role", "muted_role", "image_muted", "logs", "reaction_roles"} {
		_, ok := shape[key]
		assert.True(t, ok, "default shape missing %v", key)
	}
	assert.Len(t, shape, 7)
}

func TestBackfillAddsMissingKeysOnly(t *testing.T) {
	raw := map[string]any{
		"warnings": map[string]any{"99": []any{"spam"}},
	}

	out := backfill(raw)

	// existing key untouched
	assert.Equal(t, map[string]any{"99": []any{"spam"}}, out["warnings"])
	// missing keys filled
	_, ok := out["reaction_roles"]
	assert.True(t, ok)
	_, ok = out["logs"]
	assert.True(t, ok)
}

func TestBackfillIsShallow(t *testing.T) {
	// welcome is present but missing its message key; a shallow merge must
	// leave it alone rather than filling nested defaults
	raw := map[string]any{
		"welcome": map[string]any{"channel_id": float64(123)},
	}

	out := backfill(raw)

	welcome, ok := out["welcome"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"channel_id": float64(123)}, welcome)
}

func TestBackfillNil(t *testing.T) {
	out := backfill(nil)
	require.NotNil(t, out)
	assert.Len(t, out, 7)
}

func TestLogChannelsChannel(t *testing.T) {
	id := int64(555)
	tests := []struct {
		name     string
		logs     *LogChannels
		category string
		want     int64
		wantOk   bool
	}{
		{"nil receiver", nil, "mod", 0, false},
		{"unset category", &LogChannels{}, "mod", 0, false},
		{"set category", &LogChannels{Mod: &id}, "mod", 555, true},
		{"other category set", &LogChannels{Mod: &id}, "voice", 0, false},
		{"unknown category", &LogChannels{Mod: &id}, "nonsense", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.logs.Channel(tt.category)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
