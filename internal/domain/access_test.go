package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessPolicy_TrustThenBlock(t *testing.T) {
	var p AccessPolicy

	p.Trust("200")
	p.Block("200")

	assert.False(t, p.IsTrusted("200"))
	assert.True(t, p.IsBlocked("200"))
	assert.Empty(t, p.Trusted)
	assert.Equal(t, []string{"200"}, p.Blocked)
}

func TestAccessPolicy_BlockThenTrust(t *testing.T) {
	var p AccessPolicy

	p.Block("200")
	p.Trust("200")

	assert.True(t, p.IsTrusted("200"))
	assert.False(t, p.IsBlocked("200"))
	assert.Equal(t, []string{"200"}, p.Trusted)
	assert.Empty(t, p.Blocked)
}

func TestAccessPolicy_SetsStaySorted(t *testing.T) {
	var p AccessPolicy
	for _, id := range []string{"30", "10", "20", "10"} {
		p.Trust(id)
	}
	assert.Equal(t, []string{"10", "20", "30"}, p.Trusted)
}

func TestAccessPolicy_UntrustUnblock(t *testing.T) {
	p := AccessPolicy{Trusted: []string{"1"}, Blocked: []string{"2"}}

	assert.False(t, p.Untrust("2"))
	assert.True(t, p.Untrust("1"))
	assert.False(t, p.Unblock("1"))
	assert.True(t, p.Unblock("2"))
	assert.Empty(t, p.Trusted)
	assert.Empty(t, p.Blocked)
}

func TestAccessPolicy_Normalize(t *testing.T) {
	p := AccessPolicy{
		Trusted: []string{"3", "1", "3", "2"},
		Blocked: []string{"2", "2"},
	}
	p.Normalize()

	assert.Equal(t, []string{"1", "3"}, p.Trusted)
	assert.Equal(t, []string{"2"}, p.Blocked)
}

func TestRoom_CloneIsDeep(t *testing.T) {
	r := NewRoom("100", "1", "10")
	r.Policy.Trust("20")

	c := r.Clone()
	c.Policy.Trust("30")
	c.Policy.Locked = true

	assert.Equal(t, []string{"20"}, r.Policy.Trusted)
	assert.False(t, r.Policy.Locked)
}

func TestRoom_TransferToForgetsNewOwner(t *testing.T) {
	r := NewRoom("100", "1", "10")
	r.Policy.Trust("20")

	r.TransferTo("20")

	assert.Equal(t, "20", r.OwnerID)
	assert.False(t, r.Policy.IsTrusted("20"))
	assert.False(t, r.Policy.IsBlocked("20"))
}

func TestPermission_String(t *testing.T) {
	assert.Equal(t, "none", Permission(0).String())
	assert.Equal(t, "Connect|Speak", (PermissionSpeak | PermissionConnect).String())
}

func TestReason(t *testing.T) {
	err := Fail(ErrInvalidTarget, "user %s is blocked", "7")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Equal(t, "user 7 is blocked", Reason(err))
	assert.Equal(t, "invalid target: user 7 is blocked", err.Error())
	assert.Equal(t, "", Reason(ErrNoActiveRoom))
}
