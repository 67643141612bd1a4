// Package platformtest provides an in-memory platform.Platform for tests.
package platformtest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
)

const BotID = "9000"

// Fake is a single-process stand-in for a guild on the chat platform.
// Failures registered with Fail are returned by the named method until
// cleared with Fail(method, nil).
type Fake struct {
	mu         sync.Mutex
	nextID     int
	channels   map[string]*platform.Channel
	overwrites map[string]map[string]domain.Overwrite
	voice      map[string]map[string]string
	members    map[string]map[string]bool
	failures   map[string]error
	calls      map[string]int
	messages   map[string]string
	Notified   map[string][]string
}

func New() *Fake {
	return &Fake{
		nextID:     5000,
		channels:   make(map[string]*platform.Channel),
		overwrites: make(map[string]map[string]domain.Overwrite),
		voice:      make(map[string]map[string]string),
		members:    make(map[string]map[string]bool),
		failures:   make(map[string]error),
		calls:      make(map[string]int),
		messages:   make(map[string]string),
		Notified:   make(map[string][]string),
	}
}

func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, method)
		return
	}
	f.failures[method] = err
}

func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// AddChannel registers an existing channel and returns it.
func (f *Fake) AddChannel(guildID string, kind platform.ChannelKind, parentID, name string) *platform.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &platform.Channel{ID: f.newID(), GuildID: guildID, ParentID: parentID, Name: name, Kind: kind}
	f.channels[ch.ID] = ch
	return cloneChannel(ch)
}

// RemoveChannel deletes a channel out of band.
func (f *Fake) RemoveChannel(channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
	delete(f.overwrites, channelID)
}

func (f *Fake) AddMember(guildID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[guildID] == nil {
		f.members[guildID] = make(map[string]bool)
	}
	f.members[guildID][userID] = true
}

// Connect puts userID into channelID; an empty channelID disconnects.
func (f *Fake) Connect(guildID, userID, channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connect(guildID, userID, channelID)
}

func (f *Fake) Overwrite(channelID, subjectID string) (domain.Overwrite, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ow, ok := f.overwrites[channelID][subjectID]
	return ow, ok
}

func (f *Fake) ChannelByID(channelID string) (*platform.Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	return cloneChannel(ch), ok
}

func (f *Fake) InterfaceMessage(channelID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[channelID]
}

func (f *Fake) SelfID() string {
	return BotID
}

func (f *Fake) Channel(_ context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Channel"); err != nil {
		return nil, err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return cloneChannel(ch), nil
}

func (f *Fake) CreateChannel(_ context.Context, guildID string, spec platform.ChannelSpec) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateChannel"); err != nil {
		return nil, err
	}
	ch := &platform.Channel{
		ID:        f.newID(),
		GuildID:   guildID,
		ParentID:  spec.ParentID,
		Name:      spec.Name,
		Kind:      spec.Kind,
		UserLimit: spec.UserLimit,
	}
	f.channels[ch.ID] = ch
	for _, ow := range spec.Overwrites {
		f.setOverwrite(ch.ID, ow)
	}
	return cloneChannel(ch), nil
}

func (f *Fake) EditChannel(_ context.Context, channelID string, edit platform.ChannelEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EditChannel"); err != nil {
		return err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return platform.ErrNotFound
	}
	if edit.Name != nil {
		ch.Name = *edit.Name
	}
	if edit.UserLimit != nil {
		ch.UserLimit = *edit.UserLimit
	}
	return nil
}

func (f *Fake) DeleteChannel(_ context.Context, channelID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteChannel"); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	delete(f.channels, channelID)
	delete(f.overwrites, channelID)
	for _, users := range f.voice {
		for user, ch := range users {
			if ch == channelID {
				delete(users, user)
			}
		}
	}
	return nil
}

func (f *Fake) Overwrites(_ context.Context, channelID string) ([]domain.Overwrite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Overwrites"); err != nil {
		return nil, err
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, platform.ErrNotFound
	}
	out := make([]domain.Overwrite, 0, len(f.overwrites[channelID]))
	for _, ow := range f.overwrites[channelID] {
		out = append(out, ow)
	}
	slices.SortFunc(out, func(a, b domain.Overwrite) int {
		switch {
		case a.SubjectID < b.SubjectID:
			return -1
		case a.SubjectID > b.SubjectID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *Fake) SetOverwrite(_ context.Context, channelID string, ow domain.Overwrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetOverwrite"); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	f.setOverwrite(channelID, ow)
	return nil
}

func (f *Fake) DeleteOverwrite(_ context.Context, channelID, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteOverwrite"); err != nil {
		return err
	}
	if _, ok := f.overwrites[channelID][subjectID]; !ok {
		return platform.ErrNotFound
	}
	delete(f.overwrites[channelID], subjectID)
	return nil
}

func (f *Fake) VoiceChannelOf(_ context.Context, guildID, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("VoiceChannelOf"); err != nil {
		return "", err
	}
	return f.voice[guildID][userID], nil
}

func (f *Fake) VoiceMembers(_ context.Context, guildID, channelID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("VoiceMembers"); err != nil {
		return nil, err
	}
	var out []string
	for user, ch := range f.voice[guildID] {
		if ch == channelID {
			out = append(out, user)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (f *Fake) IsGuildMember(_ context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("IsGuildMember"); err != nil {
		return false, err
	}
	return f.members[guildID][userID], nil
}

func (f *Fake) MoveMember(_ context.Context, guildID, userID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("MoveMember"); err != nil {
		return err
	}
	if _, ok := f.channels[channelID]; !ok {
		return platform.ErrNotFound
	}
	f.connect(guildID, userID, channelID)
	return nil
}

func (f *Fake) Disconnect(_ context.Context, guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Disconnect"); err != nil {
		return err
	}
	f.connect(guildID, userID, "")
	return nil
}

func (f *Fake) SendInterface(_ context.Context, channelID string, variant domain.InterfaceVariant) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SendInterface"); err != nil {
		return "", err
	}
	if _, ok := f.channels[channelID]; !ok {
		return "", platform.ErrNotFound
	}
	id := f.newID()
	f.messages[channelID] = fmt.Sprintf("%s:%s", id, variant)
	return id, nil
}

func (f *Fake) NotifyUser(_ context.Context, userID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("NotifyUser"); err != nil {
		return err
	}
	f.Notified[userID] = append(f.Notified[userID], message)
	return nil
}

func (f *Fake) enter(method string) error {
	f.calls[method]++
	return f.failures[method]
}

func (f *Fake) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *Fake) setOverwrite(channelID string, ow domain.Overwrite) {
	if f.overwrites[channelID] == nil {
		f.overwrites[channelID] = make(map[string]domain.Overwrite)
	}
	f.overwrites[channelID][ow.SubjectID] = ow
}

func (f *Fake) connect(guildID, userID, channelID string) {
	if f.voice[guildID] == nil {
		f.voice[guildID] = make(map[string]string)
	}
	if channelID == "" {
		delete(f.voice[guildID], userID)
		return
	}
	f.voice[guildID][userID] = channelID
}

func cloneChannel(ch *platform.Channel) *platform.Channel {
	if ch == nil {
		return nil
	}
	c := *ch
	return &c
}
