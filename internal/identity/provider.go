// Package identity 登录会话能力。界面只依赖 Provider 接口，具体实现显式注入。
package identity

import (
	"context"
	"errors"

	"github.com/predictpark/predictpark/pkg/format"
)

var (
	// ErrMissingAppID 未配置身份服务的 app id，属于配置错误
	ErrMissingAppID = errors.New("identity: app id is not configured")
	// ErrNoCredentials 既没有邮箱也没有钱包地址
	ErrNoCredentials = errors.New("identity: no email or wallet address configured")
	// ErrInvalidWallet 钱包地址不是合法的 hex 地址
	ErrInvalidWallet = errors.New("identity: invalid wallet address")
)

// LoginKind 登录方式
type LoginKind string

const (
	LoginEmail  LoginKind = "email"
	LoginWallet LoginKind = "wallet"
)

// User 已登录用户
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// DisplayName 优先显示邮箱，否则显示缩写的钱包地址
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Email != "" {
		return u.Email
	}
	return format.Address(u.WalletAddress)
}

// LoginKind 有钱包地址即视为钱包登录
func (u *User) LoginKind() LoginKind {
	if u != nil && u.WalletAddress != "" {
		return LoginWallet
	}
	return LoginEmail
}

// Provider 身份/会话能力
type Provider interface {
	// Ready 会话状态已加载
	Ready() bool
	Authenticated() bool
	// User 未登录时返回 nil
	User() *User
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}
