package corebot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"go.uber.org/zap"
)

// messageTTL bounds how long message snapshots are kept around for the
// message log embeds.
const messageTTL = 24 * time.Hour

// Cache is a badger-backed snapshot store for members and messages, so the
// log handlers can show roles and content that Discord no longer sends after
// the fact.
type Cache struct {
	db     *badger.DB
	logger *ZapLogger
}

func NewCache(path string, logger *ZapLogger) (*Cache, error) {
	logger = logger.Named("cache").(*ZapLogger)
	badgerLogger := logger.Named("badger").(*ZapLogger)
	c := &Cache{
		logger: logger,
	}

	opts := badger.DefaultOptions(path)
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	opts.Logger = badgerLogger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	c.db = db

	go func() {
		gcTimer := time.NewTicker(time.Hour)
		for range gcTimer.C {
			if err := c.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
				c.logger.Error("failed to run gc", zap.Error(err))
			}
		}
	}()

	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// CachedMessage is the part of a message the log embeds need later. Only
// attachment names are kept, not the data.
type CachedMessage struct {
	Message     *discordgo.Message
	Attachments []string
}

func NewCachedMessage(msg *discordgo.Message) *CachedMessage {
	m := &CachedMessage{
		Message:     msg,
		Attachments: []string{},
	}
	for _, a := range msg.Attachments {
		m.Attachments = append(m.Attachments, a.Filename)
	}
	return m
}

func memberKey(gid, uid string) []byte {
	return []byte(fmt.Sprintf("member:%v:%v", gid, uid))
}

func messageKey(gid, cid, mid string) []byte {
	return []byte(fmt.Sprintf("message:%v:%v:%v", gid, cid, mid))
}

func (c *Cache) SetMember(m *discordgo.Member) error {
	body, err := encodeGob(m)
	if err != nil {
		c.logger.Error("failed to encode member", zap.Error(err))
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(memberKey(m.GuildID, m.User.ID), body)
	})
}

func (c *Cache) GetMember(gid, uid string) (*discordgo.Member, error) {
	body, err := c.get(memberKey(gid, uid))
	if err != nil {
		return nil, err
	}

	mem := &discordgo.Member{}
	if err := decodeGob(body, mem); err != nil {
		c.logger.Error("failed to decode member", zap.Error(err))
		return nil, err
	}
	return mem, nil
}

func (c *Cache) DeleteMember(gid, uid string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(memberKey(gid, uid))
	})
}

func (c *Cache) SetMessage(msg *CachedMessage) error {
	body, err := encodeGob(msg)
	if err != nil {
		c.logger.Error("failed to encode message", zap.Error(err))
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := &badger.Entry{
			Key:       messageKey(msg.Message.GuildID, msg.Message.ChannelID, msg.Message.ID),
			Value:     body,
			ExpiresAt: uint64(time.Now().Add(messageTTL).Unix()),
		}
		return txn.SetEntry(e)
	})
}

func (c *Cache) GetMessage(gid, cid, mid string) (*CachedMessage, error) {
	body, err := c.get(messageKey(gid, cid, mid))
	if err != nil {
		return nil, err
	}

	msg := &CachedMessage{}
	if err := decodeGob(body, msg); err != nil {
		c.logger.Error("failed to decode message", zap.Error(err))
		return nil, err
	}
	return msg, nil
}

func (c *Cache) get(key []byte) ([]byte, error) {
	var body []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	return body, err
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
