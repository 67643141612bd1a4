// Package interaction routes component interactions from the room control
// panel to the room and setup services and turns the outcome into a response.
package interaction

import (
	"strings"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionSetup
	ActionSetupOriginal
	ActionNewCreator
	ActionNewInterface
	ActionRename
	ActionLimit
	ActionLock
	ActionTrust
	ActionUntrust
	ActionInvite
	ActionKick
	ActionBlock
	ActionUnblock
	ActionClaim
	ActionTransfer
	ActionDelete
	ActionWaiting
	ActionThread
	ActionRegion
	ActionPermission

	actionCount
)

// Submissions of a modal or select menu carry the action id behind one of
// these prefixes.
const (
	modalPrefix  = "modal:"
	selectPrefix = "select:"
)

// customIDs holds the id each action is rendered with.
var customIDs = [actionCount]string{
	ActionSetup:         "setup_tempvoice",
	ActionSetupOriginal: "setup_tempvoice_original",
	ActionNewCreator:    "new_creator",
	ActionNewInterface:  "new_interface",
	ActionRename:        "voice_rename",
	ActionLimit:         "voice_limit",
	ActionLock:          "voice_lock",
	ActionTrust:         "voice_trust",
	ActionUntrust:       "voice_untrust",
	ActionInvite:        "voice_invite",
	ActionKick:          "voice_kick",
	ActionBlock:         "voice_block",
	ActionUnblock:       "voice_unblock",
	ActionClaim:         "voice_claim",
	ActionTransfer:      "voice_transfer",
	ActionDelete:        "voice_delete",
	ActionWaiting:       "voice_waiting",
	ActionThread:        "voice_thread",
	ActionRegion:        "voice_region",
	ActionPermission:    "voice_permission",
}

// aliases are ids used by panels posted before the current names.
var aliases = map[string]ActionKind{
	"voice_name":    ActionRename,
	"voice_privacy": ActionLock,
}

var byID = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(customIDs)+len(aliases))
	for kind, id := range customIDs {
		if id != "" {
			m[id] = ActionKind(kind)
		}
	}
	for id, kind := range aliases {
		m[id] = kind
	}
	return m
}()

func (k ActionKind) CustomID() string {
	if k <= ActionUnknown || k >= actionCount {
		return ""
	}
	return customIDs[k]
}

func (k ActionKind) String() string {
	if id := k.CustomID(); id != "" {
		return id
	}
	return "unknown"
}

// Parse resolves a component custom id. submitted is set for modal and
// select menu submissions.
func Parse(customID string) (kind ActionKind, submitted bool) {
	id := customID
	for _, prefix := range []string{modalPrefix, selectPrefix} {
		if rest, ok := strings.CutPrefix(customID, prefix); ok {
			id, submitted = rest, true
			break
		}
	}
	kind, ok := byID[id]
	if !ok {
		return ActionUnknown, false
	}
	return kind, submitted
}

// Button is a panel control.
type Button struct {
	Kind  ActionKind
	Label string
	Emoji string
	// Danger marks destructive controls.
	Danger bool
}

func (b Button) CustomID() string {
	return b.Kind.CustomID()
}

var buttons = map[ActionKind]Button{
	ActionRename:     {Kind: ActionRename, Label: "Name", Emoji: "✏️"},
	ActionLimit:      {Kind: ActionLimit, Label: "Limit", Emoji: "👥"},
	ActionLock:       {Kind: ActionLock, Label: "Privacy", Emoji: "🔒"},
	ActionWaiting:    {Kind: ActionWaiting, Label: "Waiting", Emoji: "⏳"},
	ActionThread:     {Kind: ActionThread, Label: "Thread", Emoji: "💬"},
	ActionTrust:      {Kind: ActionTrust, Label: "Trust", Emoji: "🤝"},
	ActionUntrust:    {Kind: ActionUntrust, Label: "Untrust", Emoji: "✂️"},
	ActionInvite:     {Kind: ActionInvite, Label: "Invite", Emoji: "📨"},
	ActionKick:       {Kind: ActionKick, Label: "Kick", Emoji: "👢"},
	ActionRegion:     {Kind: ActionRegion, Label: "Region", Emoji: "🌍"},
	ActionBlock:      {Kind: ActionBlock, Label: "Block", Emoji: "🚫"},
	ActionUnblock:    {Kind: ActionUnblock, Label: "Unblock", Emoji: "✅"},
	ActionClaim:      {Kind: ActionClaim, Label: "Claim", Emoji: "👑"},
	ActionTransfer:   {Kind: ActionTransfer, Label: "Transfer", Emoji: "🔁"},
	ActionPermission: {Kind: ActionPermission, Label: "Permissions", Emoji: "🛡️"},
	ActionDelete:     {Kind: ActionDelete, Label: "Delete", Emoji: "🗑️", Danger: true},

	ActionSetup:         {Kind: ActionSetup, Label: "Setup", Emoji: "⚙️"},
	ActionSetupOriginal: {Kind: ActionSetupOriginal, Label: "Setup (full panel)", Emoji: "⚙️"},
	ActionNewCreator:    {Kind: ActionNewCreator, Label: "New creator channel", Emoji: "➕"},
	ActionNewInterface:  {Kind: ActionNewInterface, Label: "New interface", Emoji: "📋"},
}

var (
	standardPanel = [][]ActionKind{
		{ActionRename, ActionLimit, ActionLock},
		{ActionTrust, ActionUntrust, ActionInvite, ActionKick},
		{ActionBlock, ActionUnblock, ActionClaim, ActionTransfer},
		{ActionDelete},
	}
	originalPanel = [][]ActionKind{
		{ActionRename, ActionLimit, ActionLock, ActionWaiting, ActionThread},
		{ActionTrust, ActionUntrust, ActionInvite, ActionKick, ActionRegion},
		{ActionBlock, ActionUnblock, ActionClaim, ActionTransfer, ActionPermission},
		{ActionDelete},
	}
	adminPanel = [][]ActionKind{
		{ActionSetup, ActionSetupOriginal},
		{ActionNewCreator, ActionNewInterface},
	}
)

// Panel returns the control rows of a room interface. The original variant
// also shows controls that are not available yet.
func Panel(variant domain.InterfaceVariant) [][]Button {
	if variant == domain.VariantOriginal {
		return rows(originalPanel)
	}
	return rows(standardPanel)
}

// AdminPanel returns the setup controls shown to administrators.
func AdminPanel() [][]Button {
	return rows(adminPanel)
}

func rows(layout [][]ActionKind) [][]Button {
	out := make([][]Button, 0, len(layout))
	for _, row := range layout {
		r := make([]Button, 0, len(row))
		for _, kind := range row {
			r = append(r, buttons[kind])
		}
		out = append(out, r)
	}
	return out
}

func isPlaceholder(kind ActionKind) bool {
	switch kind {
	case ActionWaiting, ActionThread, ActionRegion, ActionPermission:
		return true
	}
	return false
}
