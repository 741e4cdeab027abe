package guildstore

import (
	"bytes"
	"encoding/json"
)

// DefaultWelcomeMessage is the welcome template a fresh guild starts with.
// Placeholders: {user}, {server}, {count}.
const DefaultWelcomeMessage = "Welcome {user} to **{server}**! You are member #{count}."

// LogCategories are the fixed log channel categories, in display order.
var LogCategories = []string{"mod", "message", "member", "server", "voice"}

// Document is the full configuration record for one guild.
type Document struct {
	Warnings      map[string][]string         `json:"warnings"`
	Welcome       *Welcome                    `json:"welcome"`
	AutoRole      *AutoRole                   `json:"auto_role"`
	MutedRole     *int64                      `json:"muted_role"`
	ImageMuted    map[string]bool             `json:"image_muted"`
	Logs          *LogChannels                `json:"logs"`
	ReactionRoles map[string]map[string]int64 `json:"reaction_roles"`
}

// Welcome holds the join-greeting settings for a guild.
type Welcome struct {
	ChannelID *int64 `json:"channel_id"`
	Message   string `json:"message"`
	Embed     bool   `json:"embed"`
}

// AutoRole holds the roles handed out on join, split by account type.
type AutoRole struct {
	Member *int64 `json:"member"`
	Bot    *int64 `json:"bot"`
}

// LogChannels maps each log category to an optional channel.
type LogChannels struct {
	Mod     *int64 `json:"mod"`
	Message *int64 `json:"message"`
	Member  *int64 `json:"member"`
	Server  *int64 `json:"server"`
	Voice   *int64 `json:"voice"`
}

// Channel returns the configured channel for a log category.
func (l *LogChannels) Channel(category string) (int64, bool) {
	if l == nil {
		return 0, false
	}
	var id *int64
	switch category {
	case "mod":
		id = l.Mod
	case "message":
		id = l.Message
	case "member":
		id = l.Member
	case "server":
		id = l.Server
	case "voice":
		id = l.Voice
	}
	if id == nil {
		return 0, false
	}
	return *id, true
}

// NewDocument returns the canonical default document. New top-level keys go
// here; they are back-filled on the next load for guilds that were saved
// before the key existed.
func NewDocument() *Document {
	return &Document{
		Warnings: map[string][]string{},
		Welcome: &Welcome{
			Message: DefaultWelcomeMessage,
		},
		AutoRole:      &AutoRole{},
		ImageMuted:    map[string]bool{},
		Logs:          &LogChannels{},
		ReactionRoles: map[string]map[string]int64{},
	}
}

// defaultShape is the default document as a raw JSON object, one entry per
// top-level key. Backfill walks this table. Returns fresh values each call
// since callers insert them into mutable documents.
func defaultShape() map[string]any {
	data, err := json.Marshal(NewDocument())
	if err != nil {
		panic(err)
	}
	m, err := unmarshalRaw(data)
	if err != nil {
		panic(err)
	}
	return m
}

// unmarshalRaw decodes a document into its raw map form. Numbers are kept as
// json.Number: snowflake ids do not fit in a float64, so decoding them the
// default way would silently corrupt every id above 2^53 on the next write.
func unmarshalRaw(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// backfill inserts defaults for top-level keys missing from raw. The merge is
// shallow on purpose: a top-level key that already exists is never touched, so
// schema growth cannot clobber user data nested under existing keys.
func backfill(raw map[string]any) map[string]any {
	if raw == nil {
		raw = map[string]any{}
	}
	for key, val := range defaultShape() {
		if _, ok := raw[key]; !ok {
			raw[key] = val
		}
	}
	return raw
}

func documentFromRaw(raw map[string]any) (*Document, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	doc.normalize()
	return doc, nil
}

// normalize replaces nil containers with empty ones. Backfill only covers
// absent keys; a record holding a literal null still decodes, and callers
// write into these maps without checking.
func (d *Document) normalize() {
	if d.Warnings == nil {
		d.Warnings = map[string][]string{}
	}
	if d.Welcome == nil {
		d.Welcome = &Welcome{}
	}
	if d.AutoRole == nil {
		d.AutoRole = &AutoRole{}
	}
	if d.ImageMuted == nil {
		d.ImageMuted = map[string]bool{}
	}
	if d.Logs == nil {
		d.Logs = &LogChannels{}
	}
	if d.ReactionRoles == nil {
		d.ReactionRoles = map[string]map[string]int64{}
	}
}

func marshalDocument(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
