package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/api/interaction"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	e := embed(interaction.Response{
		Status: interaction.StatusWarning,
		Title:  "Already set up",
		Body:   "body",
		Fields: []interaction.Field{{Name: "Category", Value: "<#1>", Inline: true}},
	})
	assert.Equal(t, "Already set up", e.Title)
	assert.Equal(t, colorWarning, e.Color)
	require.Len(t, e.Fields, 1)
	assert.True(t, e.Fields[0].Inline)

	assert.Equal(t, colorError, embed(interaction.Response{Status: interaction.StatusError}).Color)
	assert.Equal(t, colorSuccess, embed(interaction.Response{Status: interaction.StatusSuccess}).Color)
	assert.Equal(t, colorInfo, embed(interaction.Response{Status: interaction.StatusInfo}).Color)
}

func TestPanelComponents(t *testing.T) {
	rows := components(interaction.Panel(domain.VariantStandard))
	require.NotEmpty(t, rows)

	ids := make(map[string]bool)
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		require.True(t, ok)
		assert.LessOrEqual(t, len(ar.Components), 5)
		for _, c := range ar.Components {
			btn, ok := c.(discordgo.Button)
			require.True(t, ok)
			ids[btn.CustomID] = true
			if btn.CustomID == "voice_delete" {
				assert.Equal(t, discordgo.DangerButton, btn.Style)
			}
		}
	}
	assert.True(t, ids["voice_lock"])
	assert.False(t, ids["voice_region"])
}

func TestPromptResponse(t *testing.T) {
	modal := promptResponse(interaction.Prompt{
		Kind:      interaction.PromptModal,
		SubmitID:  "modal:voice_rename",
		Title:     "Rename room",
		Label:     "New name",
		MinLength: 1,
		MaxLength: 100,
	})
	assert.Equal(t, discordgo.InteractionResponseModal, modal.Type)
	assert.Equal(t, "modal:voice_rename", modal.Data.CustomID)
	row := modal.Data.Components[0].(discordgo.ActionsRow)
	input := row.Components[0].(discordgo.TextInput)
	assert.Equal(t, 100, input.MaxLength)

	sel := promptResponse(interaction.Prompt{Kind: interaction.PromptUserSelect, SubmitID: "select:voice_kick"})
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, sel.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, sel.Data.Flags)
	menu := sel.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, discordgo.UserSelectMenu, menu.MenuType)
	assert.Equal(t, "select:voice_kick", menu.CustomID)
}

func TestModalValue(t *testing.T) {
	rows := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: "modal:voice_limit", Value: "5"},
		}},
	}
	assert.Equal(t, "5", modalValue(rows))
	assert.Empty(t, modalValue(nil))
}
