package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func memStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := OpenSessionStore(OpenOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewLocalProvider_MissingAppID(t *testing.T) {
	_, err := NewLocalProvider(LocalConfig{AppID: "  "}, memStore(t))
	assert.ErrorIs(t, err, ErrMissingAppID)
}

func TestLoginLogout_Wallet(t *testing.T) {
	p, err := NewLocalProvider(LocalConfig{AppID: "app", WalletAddress: wallet}, memStore(t))
	require.NoError(t, err)
	assert.True(t, p.Ready())
	assert.False(t, p.Authenticated())
	assert.Nil(t, p.User())

	require.NoError(t, p.Login(context.Background()))
	require.True(t, p.Authenticated())
	u := p.User()
	require.NotNil(t, u)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", u.WalletAddress, "EIP-55 校验和")
	assert.Equal(t, LoginWallet, u.LoginKind())
	assert.Equal(t, "0x5aAe...eAed", u.DisplayName())
	assert.NotEmpty(t, u.ID)

	// 重复登录不换 ID
	require.NoError(t, p.Login(context.Background()))
	assert.Equal(t, u.ID, p.User().ID)

	require.NoError(t, p.Logout(context.Background()))
	assert.False(t, p.Authenticated())
}

func TestLogin_Email(t *testing.T) {
	p, err := NewLocalProvider(LocalConfig{AppID: "app", Email: "ada@example.com"}, memStore(t))
	require.NoError(t, err)
	require.NoError(t, p.Login(context.Background()))
	assert.Equal(t, "ada@example.com", p.User().DisplayName())
	assert.Equal(t, LoginEmail, p.User().LoginKind())
}

func TestLogin_Errors(t *testing.T) {
	p, err := NewLocalProvider(LocalConfig{AppID: "app"}, memStore(t))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Login(context.Background()), ErrNoCredentials)

	p, err = NewLocalProvider(LocalConfig{AppID: "app", WalletAddress: "0xnothex"}, memStore(t))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Login(context.Background()), ErrInvalidWallet)
	assert.False(t, p.Authenticated())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Login(ctx), context.Canceled)
}

func TestSessionPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenSessionStore(OpenOptions{Path: dir})
	require.NoError(t, err)
	p, err := NewLocalProvider(LocalConfig{AppID: "app", Email: "ada@example.com"}, store)
	require.NoError(t, err)
	require.NoError(t, p.Login(context.Background()))
	id := p.User().ID
	require.NoError(t, store.Close())

	store, err = OpenSessionStore(OpenOptions{Path: dir})
	require.NoError(t, err)
	defer store.Close()

	p, err = NewLocalProvider(LocalConfig{AppID: "app"}, store)
	require.NoError(t, err)
	require.True(t, p.Authenticated(), "重启后保持登录")
	assert.Equal(t, id, p.User().ID)

	// 其他 app id 的会话互不影响
	other, err := NewLocalProvider(LocalConfig{AppID: "other"}, store)
	require.NoError(t, err)
	assert.False(t, other.Authenticated())
}

func TestUserNil(t *testing.T) {
	var u *User
	assert.Empty(t, u.DisplayName())
	assert.Equal(t, LoginEmail, u.LoginKind())
}
