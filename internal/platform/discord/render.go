package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/api/interaction"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

const (
	colorSuccess = 0x57F287
	colorError   = 0xED4245
	colorInfo    = 0x5865F2
	colorWarning = 0xFEE75C
)

func statusColor(s interaction.Status) int {
	switch s {
	case interaction.StatusSuccess:
		return colorSuccess
	case interaction.StatusError:
		return colorError
	case interaction.StatusWarning:
		return colorWarning
	}
	return colorInfo
}

func embed(resp interaction.Response) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       resp.Title,
		Description: resp.Body,
		Color:       statusColor(resp.Status),
	}
	for _, f := range resp.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return e
}

func panelEmbed(variant domain.InterfaceVariant) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "Room interface",
		Description: "Use the buttons below to manage your temporary room. Join the creator channel to get one.",
		Color:       colorInfo,
	}
	if variant == domain.VariantOriginal {
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Some controls are not available yet."}
	}
	return e
}

func components(rows [][]interaction.Button) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		btns := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			style := discordgo.SecondaryButton
			if b.Danger {
				style = discordgo.DangerButton
			}
			btn := discordgo.Button{
				Label:    b.Label,
				Style:    style,
				CustomID: b.CustomID(),
			}
			if b.Emoji != "" {
				btn.Emoji = &discordgo.ComponentEmoji{Name: b.Emoji}
			}
			btns = append(btns, btn)
		}
		out = append(out, discordgo.ActionsRow{Components: btns})
	}
	return out
}

func promptResponse(p interaction.Prompt) *discordgo.InteractionResponse {
	if p.Kind == interaction.PromptModal {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID: p.SubmitID,
				Title:    p.Title,
				Components: []discordgo.MessageComponent{
					discordgo.ActionsRow{Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  p.SubmitID,
							Label:     p.Label,
							Style:     discordgo.TextInputShort,
							Required:  true,
							MinLength: p.MinLength,
							MaxLength: p.MaxLength,
						},
					}},
				},
			},
		}
	}

	one := 1
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.UserSelectMenu,
						CustomID:    p.SubmitID,
						Placeholder: p.Placeholder,
						MinValues:   &one,
						MaxValues:   1,
					},
				}},
			},
		},
	}
}

func messageResponse(resp interaction.Response) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed(resp)},
		},
	}
}
