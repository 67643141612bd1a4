package domain

import (
	"fmt"
	"time"
)

type InterfaceVariant string

const (
	VariantStandard InterfaceVariant = "standard"
	VariantOriginal InterfaceVariant = "original"
)

func ParseInterfaceVariant(s string) (InterfaceVariant, error) {
	switch InterfaceVariant(s) {
	case VariantStandard, "":
		return VariantStandard, nil
	case VariantOriginal:
		return VariantOriginal, nil
	}
	return "", fmt.Errorf("unknown interface variant %q", s)
}

// GuildSetup records the category, creator channel and interface channel
// provisioned for a guild. A guild has at most one.
type GuildSetup struct {
	GuildID            string
	CategoryID         string
	CreatorChannelID   string
	InterfaceChannelID string
	InterfaceMessageID string
	Variant            InterfaceVariant
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s *GuildSetup) Clone() *GuildSetup {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
