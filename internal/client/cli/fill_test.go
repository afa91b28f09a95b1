package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTwo(t *testing.T, ta *testApp) {
	t.Helper()
	ta.feed("github", "alice", "pw1", testSecret)
	require.NoError(t, ta.Add(context.Background()))
	ta.feed("mail", "bob", "pw2", "")
	require.NoError(t, ta.Add(context.Background()))
	ta.out.Reset()
}

func TestFillSelectsPending(t *testing.T) {
	ta := newTestApp(t)
	ta.unlockNew(t)
	addTwo(t, ta)

	ta.feed("1")
	require.NoError(t, ta.Fill(context.Background()))
	assert.Contains(t, ta.out.String(), "Username: alice\n")
	assert.Contains(t, ta.out.String(), "Password: pw1\n")
	assert.Contains(t, ta.out.String(), "Selected for one-time code")

	p, ok := ta.vault.Pending()
	require.True(t, ok)
	assert.Equal(t, "github", p.Nickname)
}

func TestOTP(t *testing.T) {
	ta := newTestApp(t)
	ta.unlockNew(t)
	addTwo(t, ta)

	ta.feed("1")
	require.NoError(t, ta.OTP(context.Background()))
	assert.Regexp(t, `^(?s).*Code: \d{6} \(valid for \d+s\)\n$`, ta.out.String())

	ta.out.Reset()
	ta.feed("2")
	require.NoError(t, ta.OTP(context.Background()))
	assert.Contains(t, ta.out.String(), "No second factor configured for mail.")
}

func TestOTPDefaultsToPending(t *testing.T) {
	ta := newTestApp(t)
	ta.unlockNew(t)
	addTwo(t, ta)

	ta.feed("1")
	require.NoError(t, ta.Fill(context.Background()))
	ta.out.Reset()

	ta.feed("")
	require.NoError(t, ta.OTP(context.Background()))
	assert.Contains(t, ta.out.String(), "empty for github")
	assert.Contains(t, ta.out.String(), "Code: ")
}

func TestStageAutoFillsOnce(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)
	ta.unlockNew(t)
	addTwo(t, ta)

	ta.feed("1")
	require.NoError(t, ta.Fill(ctx))
	ta.out.Reset()

	require.NoError(t, ta.Stage(ctx))
	assert.Contains(t, ta.out.String(), "Code: ")

	ta.out.Reset()
	require.NoError(t, ta.Stage(ctx))
	assert.Equal(t, "Nothing to auto-fill.\n", ta.out.String())
}

func TestLoggedInClearsPending(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)
	ta.unlockNew(t)
	addTwo(t, ta)

	require.Error(t, ta.LoggedIn(ctx), "nothing pending yet")

	ta.feed("2")
	require.NoError(t, ta.Fill(ctx))
	require.NoError(t, ta.LoggedIn(ctx))

	_, ok := ta.vault.Pending()
	assert.False(t, ok)
}
