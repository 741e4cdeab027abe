package corebot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    uint64
		wantErr bool
	}{
		{
			name: "valid test",
			args: "163454407999094786",
			want: 163454407999094786,
		},
		{
			name:    "invalid test",
			args:    "asdf",
			wantErr: true,
		},
		{
			name:    "negative",
			args:    "-1",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseID(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderWelcome(t *testing.T) {
	user := &discordgo.User{ID: "1234", Username: "jeff"}
	guild := &discordgo.Guild{Name: "testserver", MemberCount: 7}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "all placeholders",
			template: "Welcome {user} to **{server}**! You are member #{count}.",
			want:     "Welcome <@1234> to **testserver**! You are member #7.",
		},
		{
			name:     "no placeholders",
			template: "hello",
			want:     "hello",
		},
		{
			name:     "repeated placeholder",
			template: "{user} {user}",
			want:     "<@1234> <@1234>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderWelcome(tt.template, user, guild); got != tt.want {
				t.Errorf("renderWelcome() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmojiToken(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{
			name: "custom emoji",
			args: "<:thumbsup:163454407999094786>",
			want: "thumbsup:163454407999094786",
		},
		{
			name: "animated emoji",
			args: "<a:party:163454407999094786>",
			want: "party:163454407999094786",
		},
		{
			name: "unicode emoji",
			args: "👍",
			want: "👍",
		},
		{
			name: "whitespace",
			args: " 👍 ",
			want: "👍",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emojiToken(tt.args); got != tt.want {
				t.Errorf("emojiToken() = %v, want %v", got, tt.want)
			}
		})
	}
}
