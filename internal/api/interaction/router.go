package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/service"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

// Interaction is one inbound component interaction. Respond may be called
// before or after Defer and resolves the interaction either way.
type Interaction interface {
	Actor() domain.Actor
	CustomID() string
	// Input is the submitted modal value or the selected user id.
	Input() string
	Defer(ctx context.Context) error
	Respond(ctx context.Context, resp Response) error
	Prompt(ctx context.Context, p Prompt) error
}

type handler func(ctx context.Context, actor domain.Actor, input string) (Response, error)

type route struct {
	prompt *Prompt
	run    handler
}

type Router struct {
	rooms  service.RoomInteractor
	setups service.SetupInteractor
	log    *slog.Logger
	routes [actionCount]route
}

func NewRouter(rooms service.RoomInteractor, setups service.SetupInteractor, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{rooms: rooms, setups: setups, log: log}

	r.routes = [actionCount]route{
		ActionUnknown:       {run: r.unknown},
		ActionSetup:         {run: r.setup(domain.VariantStandard)},
		ActionSetupOriginal: {run: r.setup(domain.VariantOriginal)},
		ActionNewCreator:    {run: r.newCreator},
		ActionNewInterface:  {run: r.newInterface},
		ActionRename: {
			prompt: modal(ActionRename, "Rename room", "New name", 1, service.DefaultMaxNameLength),
			run:    r.rename,
		},
		ActionLimit: {
			prompt: modal(ActionLimit, "User limit", "Limit (0 for unlimited)", 1, 2),
			run:    r.limit,
		},
		ActionLock:       {run: r.lock},
		ActionTrust:      {prompt: userSelect(ActionTrust, "Select a user to trust"), run: r.trust},
		ActionUntrust:    {prompt: userSelect(ActionUntrust, "Select a user to untrust"), run: r.untrust},
		ActionInvite:     {prompt: userSelect(ActionInvite, "Select a user to invite"), run: r.invite},
		ActionKick:       {prompt: userSelect(ActionKick, "Select a user to kick"), run: r.kick},
		ActionBlock:      {prompt: userSelect(ActionBlock, "Select a user to block"), run: r.block},
		ActionUnblock:    {prompt: userSelect(ActionUnblock, "Select a user to unblock"), run: r.unblock},
		ActionClaim:      {run: r.claim},
		ActionTransfer:   {prompt: userSelect(ActionTransfer, "Select the new owner"), run: r.transfer},
		ActionDelete:     {run: r.delete},
		ActionWaiting:    {run: notAvailable("Waiting room")},
		ActionThread:     {run: notAvailable("Threads")},
		ActionRegion:     {run: notAvailable("Region")},
		ActionPermission: {run: notAvailable("Permissions")},
	}
	return r
}

func modal(kind ActionKind, title, label string, minLen, maxLen int) *Prompt {
	return &Prompt{
		Kind:      PromptModal,
		SubmitID:  modalPrefix + kind.CustomID(),
		Title:     title,
		Label:     label,
		MinLength: minLen,
		MaxLength: maxLen,
	}
}

func userSelect(kind ActionKind, placeholder string) *Prompt {
	return &Prompt{
		Kind:        PromptUserSelect,
		SubmitID:    selectPrefix + kind.CustomID(),
		Placeholder: placeholder,
	}
}

// Handle resolves in exactly once. The first step of a two-step action
// answers with its prompt; everything else is deferred, run and answered with
// the outcome. Errors and panics become error responses.
func (r *Router) Handle(ctx context.Context, in Interaction) {
	const op = "interaction.router.handle"

	kind, submitted := Parse(in.CustomID())
	actor := in.Actor()
	log := r.log.With(
		slog.String("op", op),
		slog.String("request_id", uuid.NewString()),
		slog.String("action", kind.String()),
		slog.String("guild_id", actor.GuildID),
		slog.String("user_id", actor.UserID),
	)

	rt := r.routes[kind]
	if rt.prompt != nil && !submitted {
		if err := in.Prompt(ctx, *rt.prompt); err != nil {
			log.Error("failed to show prompt", sl.Err(err))
			r.respond(ctx, log, in, errorResponse(fmt.Errorf("%w: %w", domain.ErrPlatformUnavailable, err)))
		}
		return
	}

	if err := in.Defer(ctx); err != nil {
		log.Warn("failed to defer interaction", sl.Err(err))
	}

	resp := r.run(ctx, log, rt.run, actor, strings.TrimSpace(in.Input()))
	r.respond(ctx, log, in, resp)
}

func (r *Router) run(ctx context.Context, log *slog.Logger, h handler, actor domain.Actor, input string) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("action panicked", slog.Any("panic", p))
			resp = errorResponse(errors.New("panic"))
		}
	}()

	resp, err := h(ctx, actor, input)
	if err != nil {
		if resp.Title != "" {
			return resp
		}
		log.Info("action failed", sl.Err(err))
		return errorResponse(err)
	}
	return resp
}

func (r *Router) respond(ctx context.Context, log *slog.Logger, in Interaction, resp Response) {
	if err := in.Respond(ctx, resp); err != nil {
		log.Error("failed to respond", slog.String("status", resp.Status.String()), sl.Err(err))
	}
}

func (r *Router) unknown(context.Context, domain.Actor, string) (Response, error) {
	return failure("Unknown action", "This control is not recognised. The panel may be outdated."), nil
}

func notAvailable(feature string) handler {
	return func(context.Context, domain.Actor, string) (Response, error) {
		return info(feature, feature+" is not available yet."), nil
	}
}

func (r *Router) setup(variant domain.InterfaceVariant) handler {
	return func(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
		out, err := r.setups.Setup(ctx, actor, variant)
		if errors.Is(err, domain.ErrAlreadySetup) && out != nil {
			return warning("Already set up", "Temporary rooms are already set up on this server.", setupFields(out.Setup)...), err
		}
		if err != nil {
			return Response{}, err
		}

		switch out.Kind {
		case service.OutcomeCleared:
			return warning("Setup reset",
				fmt.Sprintf("The previous setup was invalid (%s) and has been removed. Run setup again.", out.Reason)), nil
		default:
			return success("Setup complete", "Join the creator channel to get a room.", setupFields(out.Setup)...), nil
		}
	}
}

func (r *Router) newCreator(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
	out, err := r.setups.NewCreator(ctx, actor)
	if err != nil {
		return Response{}, err
	}
	return success("Creator channel added", fmt.Sprintf("Members now join <#%s> to get a room.", out.Setup.CreatorChannelID)), nil
}

func (r *Router) newInterface(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
	out, err := r.setups.NewInterface(ctx, actor)
	if err != nil {
		return Response{}, err
	}
	return success("Interface posted", fmt.Sprintf("A new control panel was posted in <#%s>.", out.Setup.InterfaceChannelID)), nil
}

func (r *Router) rename(ctx context.Context, actor domain.Actor, input string) (Response, error) {
	view, err := r.rooms.Rename(ctx, actor, input)
	if err != nil {
		return Response{}, err
	}
	return success("Room renamed", fmt.Sprintf("Your room is now called **%s**.", view.Channel.Name)), nil
}

func (r *Router) limit(ctx context.Context, actor domain.Actor, input string) (Response, error) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return Response{}, domain.Fail(domain.ErrValidationFailed, "%q is not a number", input)
	}
	view, err := r.rooms.SetLimit(ctx, actor, n)
	if err != nil {
		return Response{}, err
	}
	if view.Channel.UserLimit == 0 {
		return success("Limit removed", "Your room has no user limit."), nil
	}
	return success("Limit set", fmt.Sprintf("Your room now allows %d users.", view.Channel.UserLimit)), nil
}

func (r *Router) lock(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
	view, err := r.rooms.ToggleLock(ctx, actor)
	if err != nil {
		return Response{}, err
	}
	if view.Room.Policy.Locked {
		return success("Room locked", "Only you and trusted users can join now."), nil
	}
	return success("Room unlocked", "Everyone can join your room again."), nil
}

func (r *Router) trust(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	if _, err := r.rooms.Trust(ctx, actor, target); err != nil {
		return Response{}, err
	}
	return success("User trusted", fmt.Sprintf("<@%s> can now join your room.", target)), nil
}

func (r *Router) untrust(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	if _, err := r.rooms.Untrust(ctx, actor, target); err != nil {
		return Response{}, err
	}
	return success("User untrusted", fmt.Sprintf("<@%s> is no longer trusted.", target)), nil
}

func (r *Router) invite(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	view, err := r.rooms.Invite(ctx, actor, target)
	if err != nil {
		return Response{}, err
	}
	if !view.Notified {
		return warning("User invited",
			fmt.Sprintf("<@%s> can now join your room, but the invite message could not be delivered.", target)), nil
	}
	return success("User invited", fmt.Sprintf("<@%s> was invited to your room.", target)), nil
}

func (r *Router) kick(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	if _, err := r.rooms.Kick(ctx, actor, target); err != nil {
		return Response{}, err
	}
	return success("User kicked", fmt.Sprintf("<@%s> was disconnected from your room.", target)), nil
}

func (r *Router) block(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	view, err := r.rooms.Block(ctx, actor, target)
	if err != nil {
		return Response{}, err
	}
	if view.DisconnectFailed {
		return warning("User blocked",
			fmt.Sprintf("<@%s> can no longer join your room, but could not be disconnected from it.", target)), nil
	}
	return success("User blocked", fmt.Sprintf("<@%s> can no longer join your room.", target)), nil
}

func (r *Router) unblock(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	if _, err := r.rooms.Unblock(ctx, actor, target); err != nil {
		return Response{}, err
	}
	return success("User unblocked", fmt.Sprintf("<@%s> is no longer blocked.", target)), nil
}

func (r *Router) claim(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
	view, err := r.rooms.Claim(ctx, actor)
	if err != nil {
		return Response{}, err
	}
	return success("Room claimed", fmt.Sprintf("You now own <#%s>.", view.Room.ID)), nil
}

func (r *Router) transfer(ctx context.Context, actor domain.Actor, target string) (Response, error) {
	if _, err := r.rooms.Transfer(ctx, actor, target); err != nil {
		return Response{}, err
	}
	return success("Ownership transferred", fmt.Sprintf("<@%s> now owns your room.", target)), nil
}

func (r *Router) delete(ctx context.Context, actor domain.Actor, _ string) (Response, error) {
	if _, err := r.rooms.Delete(ctx, actor); err != nil {
		return Response{}, err
	}
	return success("Room deleted", "Your room has been deleted."), nil
}

func setupFields(s *domain.GuildSetup) []Field {
	if s == nil {
		return nil
	}
	return []Field{
		{Name: "Category", Value: fmt.Sprintf("<#%s>", s.CategoryID), Inline: true},
		{Name: "Creator", Value: fmt.Sprintf("<#%s>", s.CreatorChannelID), Inline: true},
		{Name: "Interface", Value: fmt.Sprintf("<#%s>", s.InterfaceChannelID), Inline: true},
	}
}
