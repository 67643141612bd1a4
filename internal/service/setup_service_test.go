package service

import (
	"context"
	"testing"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/platform/platformtest"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admin = domain.Actor{GuildID: guildID, UserID: alice, IsAdmin: true}

func newSetupService() (*SetupService, *platformtest.Fake, *repository.InMemorySetupRepository) {
	f := platformtest.New()
	setups := repository.NewInMemorySetupRepository()
	return NewSetupService(setups, f, discardLogger()), f, setups
}

func TestSetupService_Setup(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	out, err := svc.Setup(ctx, admin, domain.VariantOriginal)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, out.Kind)

	setup := out.Setup
	category, ok := f.ChannelByID(setup.CategoryID)
	require.True(t, ok)
	assert.Equal(t, platform.ChannelCategory, category.Kind)

	creator, ok := f.ChannelByID(setup.CreatorChannelID)
	require.True(t, ok)
	assert.Equal(t, platform.ChannelVoice, creator.Kind)
	assert.Equal(t, setup.CategoryID, creator.ParentID)

	iface, ok := f.ChannelByID(setup.InterfaceChannelID)
	require.True(t, ok)
	assert.Equal(t, platform.ChannelText, iface.Kind)
	assert.Equal(t, setup.InterfaceMessageID+":original", f.InterfaceMessage(setup.InterfaceChannelID))

	everyone, ok := f.Overwrite(setup.InterfaceChannelID, guildID)
	require.True(t, ok)
	assert.True(t, everyone.Deny.Has(domain.PermissionSendMessages))

	stored, err := setups.Get(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, setup.CreatorChannelID, stored.CreatorChannelID)

	again, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.ErrorIs(t, err, domain.ErrAlreadySetup)
	assert.Equal(t, OutcomeExisting, again.Kind)
	assert.Equal(t, setup.CategoryID, again.Setup.CategoryID)
}

func TestSetupService_SetupRequiresAdmin(t *testing.T) {
	svc, f, _ := newSetupService()

	_, err := svc.Setup(context.Background(), actor(bob), domain.VariantStandard)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, f.Calls("CreateChannel"))
}

func TestSetupService_SetupClearsInvalidSetup(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	out, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.NoError(t, err)
	f.RemoveChannel(out.Setup.InterfaceChannelID)

	cleared, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, cleared.Kind)
	assert.Equal(t, ReasonInterfaceMissing, cleared.Reason)

	_, err = setups.Get(ctx, guildID)
	assert.ErrorIs(t, err, repository.ErrSetupNotFound)

	created, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, created.Kind)
}

func TestSetupService_SetupRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	f.Fail("SendInterface", errBoom)
	_, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.ErrorIs(t, err, domain.ErrPlatformUnavailable)

	assert.Equal(t, 3, f.Calls("CreateChannel"))
	assert.Equal(t, 3, f.Calls("DeleteChannel"))
	_, err = setups.Get(ctx, guildID)
	assert.ErrorIs(t, err, repository.ErrSetupNotFound)
}

func TestSetupService_SaveFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("setup rolls back", func(t *testing.T) {
		f := platformtest.New()
		setups := new(repository.MockSetupRepository)
		setups.On("Get", mock.Anything, guildID).Return(nil, repository.ErrSetupNotFound)
		setups.On("Save", mock.Anything, mock.Anything).Return(errBoom)
		svc := NewSetupService(setups, f, discardLogger())

		_, err := svc.Setup(ctx, admin, domain.VariantStandard)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, 3, f.Calls("CreateChannel"))
		assert.Equal(t, 3, f.Calls("DeleteChannel"))
		setups.AssertExpectations(t)
	})

	tcases := []struct {
		name string
		call func(svc *SetupService) (*SetupOutcome, error)
	}{
		{"new creator", func(svc *SetupService) (*SetupOutcome, error) { return svc.NewCreator(ctx, admin) }},
		{"new interface", func(svc *SetupService) (*SetupOutcome, error) { return svc.NewInterface(ctx, admin) }},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			f := platformtest.New()
			category := f.AddChannel(guildID, platform.ChannelCategory, "", "Temporary Channels")
			creator := f.AddChannel(guildID, platform.ChannelVoice, category.ID, "Create Room")
			iface := f.AddChannel(guildID, platform.ChannelText, category.ID, "interface")

			setups := new(repository.MockSetupRepository)
			setups.On("Get", mock.Anything, guildID).Return(&domain.GuildSetup{
				GuildID:            guildID,
				CategoryID:         category.ID,
				CreatorChannelID:   creator.ID,
				InterfaceChannelID: iface.ID,
				Variant:            domain.VariantStandard,
			}, nil)
			setups.On("Save", mock.Anything, mock.Anything).Return(errBoom).Once()
			svc := NewSetupService(setups, f, discardLogger())

			out, err := tc.call(svc)
			require.ErrorIs(t, err, errBoom)
			assert.Nil(t, out)
			setups.AssertExpectations(t)
		})
	}
}

func TestSetupService_Validate(t *testing.T) {
	tcases := []struct {
		name   string
		breaks func(f *platformtest.Fake, setup *domain.GuildSetup)
		reason string
	}{
		{
			name:   "category missing",
			breaks: func(f *platformtest.Fake, setup *domain.GuildSetup) { f.RemoveChannel(setup.CategoryID) },
			reason: ReasonCategoryMissing,
		},
		{
			name:   "creator channel missing",
			breaks: func(f *platformtest.Fake, setup *domain.GuildSetup) { f.RemoveChannel(setup.CreatorChannelID) },
			reason: ReasonCreatorMissing,
		},
		{
			name:   "interface channel missing",
			breaks: func(f *platformtest.Fake, setup *domain.GuildSetup) { f.RemoveChannel(setup.InterfaceChannelID) },
			reason: ReasonInterfaceMissing,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, f, setups := newSetupService()

			out, err := svc.Setup(ctx, admin, domain.VariantStandard)
			require.NoError(t, err)

			status, err := svc.Validate(ctx, guildID)
			require.NoError(t, err)
			assert.True(t, status.Valid)

			tc.breaks(f, out.Setup)

			status, err = svc.Validate(ctx, guildID)
			require.NoError(t, err)
			assert.False(t, status.Valid)
			assert.Equal(t, tc.reason, status.Reason)

			_, err = setups.Get(ctx, guildID)
			assert.ErrorIs(t, err, repository.ErrSetupNotFound)
		})
	}
}

func TestSetupService_ValidateMisplacedCreator(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	category := f.AddChannel(guildID, platform.ChannelCategory, "", "rooms")
	other := f.AddChannel(guildID, platform.ChannelCategory, "", "other")
	creator := f.AddChannel(guildID, platform.ChannelVoice, other.ID, "create")
	iface := f.AddChannel(guildID, platform.ChannelText, category.ID, "interface")
	require.NoError(t, setups.Save(ctx, &domain.GuildSetup{
		GuildID:            guildID,
		CategoryID:         category.ID,
		CreatorChannelID:   creator.ID,
		InterfaceChannelID: iface.ID,
	}))

	status, err := svc.Validate(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, ReasonCreatorMisplaced, status.Reason)
}

func TestSetupService_ValidateTransientFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	_, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.NoError(t, err)

	f.Fail("Channel", errBoom)
	_, err = svc.Validate(ctx, guildID)
	require.ErrorIs(t, err, domain.ErrPlatformUnavailable)

	_, err = setups.Get(ctx, guildID)
	assert.NoError(t, err)
}

func TestSetupService_ValidateWithoutSetup(t *testing.T) {
	svc, _, _ := newSetupService()

	status, err := svc.Validate(context.Background(), guildID)
	require.NoError(t, err)
	assert.False(t, status.Valid)
	assert.Equal(t, ReasonNoSetup, status.Reason)
	assert.Nil(t, status.Setup)
}

func TestSetupService_NewCreatorAndInterface(t *testing.T) {
	ctx := context.Background()
	svc, f, setups := newSetupService()

	_, err := svc.NewCreator(ctx, admin)
	require.ErrorIs(t, err, domain.ErrSetupRequired)

	out, err := svc.Setup(ctx, admin, domain.VariantStandard)
	require.NoError(t, err)
	first := *out.Setup

	_, err = svc.NewCreator(ctx, actor(bob))
	require.ErrorIs(t, err, domain.ErrForbidden)

	creator, err := svc.NewCreator(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatorAdded, creator.Kind)
	assert.NotEqual(t, first.CreatorChannelID, creator.Setup.CreatorChannelID)
	_, ok := f.ChannelByID(first.CreatorChannelID)
	assert.True(t, ok, "previous creator channel is kept")

	iface, err := svc.NewInterface(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterfacePosted, iface.Kind)
	assert.NotEqual(t, first.InterfaceMessageID, iface.Setup.InterfaceMessageID)

	stored, err := setups.Get(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, creator.Setup.CreatorChannelID, stored.CreatorChannelID)
	assert.Equal(t, iface.Setup.InterfaceMessageID, stored.InterfaceMessageID)
}
