package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/intrntsrfr/meido/pkg/utils"
	"github.com/joho/godotenv"

	"github.com/intrntsrfr/corebot"
	"github.com/intrntsrfr/corebot/guildstore"
)

func main() {
	// a .env is optional; config.json is the base
	_ = godotenv.Load()

	cfg := utils.NewConfig()
	c := loadConfig(cfg, "./config.json")

	backend, err := newBackend(c)
	if err != nil {
		panic(err)
	}

	bot := corebot.NewBot(cfg, backend)
	defer bot.Close()

	if err := bot.Run(context.Background()); err != nil {
		panic(err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
}

type config struct {
	Token   string `json:"token"`
	Shards  int    `json:"shards"`
	Backend string `json:"backend"`
	DataDir string `json:"data_dir"`
	ConnStr string `json:"connection_string"`
}

func loadConfig(cfg *utils.Config, path string) *config {
	f, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var c config
	if err := json.Unmarshal(f, &c); err != nil {
		panic(err)
	}

	if token := os.Getenv("COREBOT_TOKEN"); token != "" {
		c.Token = token
	}
	if connStr := os.Getenv("COREBOT_CONNECTION_STRING"); connStr != "" {
		c.ConnStr = connStr
	}

	cfg.Set("token", c.Token)
	cfg.Set("shards", c.Shards)
	return &c
}

func newBackend(c *config) (guildstore.Backend, error) {
	switch c.Backend {
	case "", "file":
		dir := c.DataDir
		if dir == "" {
			dir = "./data/guilds"
		}
		return guildstore.NewFileStore(dir)
	case "postgres":
		return guildstore.NewTableStore(c.ConnStr)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
