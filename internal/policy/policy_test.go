package policy

import (
	"testing"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guild = "1000"
	owner = "10"
)

func bySubject(t *testing.T, set []domain.Overwrite) map[string]domain.Overwrite {
	t.Helper()
	out := make(map[string]domain.Overwrite, len(set))
	for _, ow := range set {
		_, dup := out[ow.SubjectID]
		require.False(t, dup, "subject %s appears twice", ow.SubjectID)
		out[ow.SubjectID] = ow
	}
	return out
}

func TestDerive(t *testing.T) {
	tcases := []struct {
		name     string
		policy   domain.AccessPolicy
		subjects []string
	}{
		{
			name:     "unlocked empty policy",
			policy:   domain.AccessPolicy{},
			subjects: []string{owner, guild},
		},
		{
			name:     "locked with trusted and blocked",
			policy:   domain.AccessPolicy{Locked: true, Trusted: []string{"30", "20"}, Blocked: []string{"40"}},
			subjects: []string{owner, guild, "20", "30", "40"},
		},
		{
			name:     "owner listed in both sets",
			policy:   domain.AccessPolicy{Trusted: []string{owner}, Blocked: []string{owner}},
			subjects: []string{owner, guild},
		},
		{
			name:     "subject in both sets is blocked",
			policy:   domain.AccessPolicy{Trusted: []string{"20"}, Blocked: []string{"20"}},
			subjects: []string{owner, guild, "20"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			set := Derive(tc.policy, owner, guild)

			got := make([]string, 0, len(set))
			for _, ow := range set {
				got = append(got, ow.SubjectID)
			}
			assert.Equal(t, tc.subjects, got)

			m := bySubject(t, set)
			assert.Equal(t, OwnerAllow, m[owner].Allow)
			assert.Zero(t, m[owner].Deny)
			assert.Equal(t, domain.SubjectRole, m[guild].Kind)
			for _, id := range tc.policy.Blocked {
				if id == owner {
					continue
				}
				assert.Equal(t, BlockedDeny, m[id].Deny)
				assert.Zero(t, m[id].Allow)
			}
		})
	}
}

func TestDerive_LockTogglesEveryoneConnect(t *testing.T) {
	unlocked := bySubject(t, Derive(domain.AccessPolicy{}, owner, guild))
	assert.Zero(t, unlocked[guild].Allow)
	assert.Zero(t, unlocked[guild].Deny)

	locked := bySubject(t, Derive(domain.AccessPolicy{Locked: true}, owner, guild))
	assert.True(t, locked[guild].Deny.Has(domain.PermissionConnect))
	assert.True(t, locked[owner].Allow.Has(domain.PermissionConnect))
}

func TestDerive_TrustedGetsConnectAndSpeak(t *testing.T) {
	m := bySubject(t, Derive(domain.AccessPolicy{Locked: true, Trusted: []string{"20"}}, owner, guild))

	assert.Equal(t, domain.PermissionConnect|domain.PermissionSpeak, m["20"].Allow)
	assert.Zero(t, m["20"].Deny)
}

func TestDerive_Deterministic(t *testing.T) {
	p := domain.AccessPolicy{Trusted: []string{"5", "3", "4"}, Blocked: []string{"9", "7"}}
	assert.Equal(t, Derive(p, owner, guild), Derive(p, owner, guild))
}

func TestPlan(t *testing.T) {
	desired := Derive(domain.AccessPolicy{Locked: true, Trusted: []string{"20"}}, owner, guild)

	t.Run("fresh channel sets everything", func(t *testing.T) {
		c := Plan(nil, desired)
		assert.Equal(t, desired, c.Set)
		assert.Empty(t, c.Remove)
	})

	t.Run("applied plan is a no-op", func(t *testing.T) {
		c := Plan(desired, desired)
		assert.True(t, c.Empty())
	})

	t.Run("stale members removed, self and roles kept", func(t *testing.T) {
		current := append([]domain.Overwrite{
			{SubjectID: "99", Kind: domain.SubjectMember, Allow: TrustedAllow},
			{SubjectID: "bot", Kind: domain.SubjectMember, Allow: SelfAllow},
			{SubjectID: "mods", Kind: domain.SubjectRole, Allow: domain.PermissionConnect},
		}, desired...)

		c := Plan(current, desired, "bot")
		assert.Empty(t, c.Set)
		assert.Equal(t, []string{"99"}, c.Remove)
	})

	t.Run("changed entry is rewritten", func(t *testing.T) {
		current := Derive(domain.AccessPolicy{Trusted: []string{"20"}}, owner, guild)
		c := Plan(current, desired)
		require.Len(t, c.Set, 1)
		assert.Equal(t, guild, c.Set[0].SubjectID)
		assert.Equal(t, LockedDeny, c.Set[0].Deny)
	})
}

func TestChanges_Merge(t *testing.T) {
	applied := Derive(domain.AccessPolicy{Locked: true, Trusted: []string{"20"}}, owner, guild)
	desired := Derive(domain.AccessPolicy{}, owner, guild)

	// the live view still shows the channel before the last write landed
	stale := Derive(domain.AccessPolicy{}, owner, guild)

	live := Plan(stale, desired)
	assert.True(t, live.Empty())

	c := live.Merge(Plan(applied, desired))
	require.Len(t, c.Set, 1)
	assert.Equal(t, guild, c.Set[0].SubjectID)
	assert.Zero(t, c.Set[0].Deny)
	assert.Equal(t, []string{"20"}, c.Remove)

	t.Run("overlapping entries written once", func(t *testing.T) {
		a := Changes{Set: desired, Remove: []string{"30", "20"}}
		b := Changes{Set: desired, Remove: []string{"20"}}
		m := a.Merge(b)
		assert.Equal(t, desired, m.Set)
		assert.Equal(t, []string{"20", "30"}, m.Remove)
	})
}
