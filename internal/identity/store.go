package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Session 持久化的登录会话
type Session struct {
	User      User      `json:"user"`
	AppID     string    `json:"appId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore 基于 Badger 的会话存储，按 app id 分 key
type SessionStore struct {
	db *badger.DB
}

type OpenOptions struct {
	Path     string
	InMemory bool // 测试用，不落盘
}

func OpenSessionStore(opts OpenOptions) (*SessionStore, error) {
	var bopts badger.Options
	switch {
	case opts.InMemory:
		bopts = badger.DefaultOptions("").WithInMemory(true)
	case strings.TrimSpace(opts.Path) == "":
		return nil, errors.New("identity: session path is required")
	default:
		bopts = badger.DefaultOptions(opts.Path)
	}
	db, err := badger.Open(bopts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func sessionKey(appID string) []byte {
	return []byte("session/" + appID)
}

// Load 不存在时返回 (nil, nil)
func (s *SessionStore) Load(appID string) (*Session, error) {
	var out *Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(appID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var sess Session
			if err := json.Unmarshal(val, &sess); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
			out = &sess
			return nil
		})
	})
	return out, err
}

func (s *SessionStore) Save(sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(sess.AppID), data)
	})
}

func (s *SessionStore) Delete(appID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(appID))
	})
}
