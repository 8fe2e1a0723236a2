package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "identity")

// LocalConfig 本地登录使用的身份信息
type LocalConfig struct {
	AppID         string
	Email         string
	WalletAddress string
}

// LocalProvider 本地会话：用配置中的邮箱/钱包登录，会话存入 SessionStore，重启后仍保持登录
type LocalProvider struct {
	cfg   LocalConfig
	store *SessionStore
	now   func() time.Time

	mu    sync.RWMutex
	ready bool
	user  *User
}

// NewLocalProvider app id 为空时返回 ErrMissingAppID
func NewLocalProvider(cfg LocalConfig, store *SessionStore) (*LocalProvider, error) {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	if cfg.AppID == "" {
		return nil, ErrMissingAppID
	}
	p := &LocalProvider{cfg: cfg, store: store, now: time.Now}
	if err := p.restore(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LocalProvider) restore() error {
	sess, err := p.store.Load(p.cfg.AppID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess != nil {
		u := sess.User
		p.user = &u
		log.Infof("restored session for %s", u.DisplayName())
	}
	p.ready = true
	return nil
}

func (p *LocalProvider) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

func (p *LocalProvider) Authenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user != nil
}

func (p *LocalProvider) User() *User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// Login 已登录时直接返回
func (p *LocalProvider) Login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user != nil {
		return nil
	}

	email := strings.TrimSpace(p.cfg.Email)
	wallet := strings.TrimSpace(p.cfg.WalletAddress)
	if email == "" && wallet == "" {
		return ErrNoCredentials
	}
	if wallet != "" {
		if !common.IsHexAddress(wallet) {
			return ErrInvalidWallet
		}
		wallet = common.HexToAddress(wallet).Hex()
	}

	u := User{ID: uuid.NewString(), Email: email, WalletAddress: wallet}
	if err := p.store.Save(Session{User: u, AppID: p.cfg.AppID, CreatedAt: p.now().UTC()}); err != nil {
		return err
	}
	p.user = &u
	log.Infof("signed in as %s (%s)", u.DisplayName(), u.LoginKind())
	return nil
}

func (p *LocalProvider) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Delete(p.cfg.AppID); err != nil {
		return err
	}
	p.user = nil
	log.Info("signed out")
	return nil
}
