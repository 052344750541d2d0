// Package router maps inbound chat events onto game operations and keeps
// the channel bookkeeping straight. Dispatch is a case-insensitive ordered
// match over alias sets; order encodes precedence, so prefix commands sit
// below any exact command they could shadow.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/velvetpaw/gamebot/internal/catalog"
	"github.com/velvetpaw/gamebot/internal/fchat"
	"github.com/velvetpaw/gamebot/internal/game"
	"github.com/velvetpaw/gamebot/internal/obslog"
	"github.com/velvetpaw/gamebot/internal/outbox"
	"github.com/velvetpaw/gamebot/internal/store"
)

// The command surface. Aliases are part of the product; casing and
// punctuation are load-bearing.
var (
	joinAliases   = []string{"!yesspin", "!optin", "!join"}
	leaveAliases  = []string{"!nospin", "!optout", "!leave"}
	statusAliases = []string{"!ready", "!status"}
	spinAliases   = []string{"!spin", "!bottle"}
)

const tryAgainMsg = "Something went wrong on my end. Try that again in a moment."

type Router struct {
	botName string
	admins  map[string]bool
	store   store.Store
	engine  *game.Engine
	catalog *catalog.Catalog
	out     *outbox.Queue
}

func New(botName string, admins []string, st store.Store, eng *game.Engine, cat *catalog.Catalog, out *outbox.Queue) *Router {
	adminSet := make(map[string]bool, len(admins))
	for _, a := range admins {
		adminSet[strings.ToLower(a)] = true
	}
	return &Router{
		botName: botName,
		admins:  adminSet,
		store:   st,
		engine:  eng,
		catalog: cat,
		out:     out,
	}
}

// Handle processes one inbound event. Events arrive sequentially from the
// session's read loop.
func (r *Router) Handle(ev any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev := ev.(type) {
	case *fchat.ChannelMessage:
		if ev.Character == r.botName {
			return
		}
		r.groupCommand(ctx, ev)
	case *fchat.PrivateMessage:
		if ev.Character == r.botName {
			return
		}
		r.privateCommand(ctx, ev)
	case *fchat.ChannelJoin:
		if ev.Character != r.botName {
			return
		}
		if err := r.store.EnsureChannel(ctx, ev.Channel, ev.Title); err != nil {
			obslog.L().Error("ensure_channel_failed", zap.String("channel", ev.Channel), zap.Error(err))
			return
		}
		if err := r.store.ClearPending(ctx, ev.Channel); err != nil {
			obslog.L().Error("clear_pending_failed", zap.String("channel", ev.Channel), zap.Error(err))
		}
	case *fchat.ChannelUsers:
		// The server confirms membership with the user list too.
		if err := r.store.ClearPending(ctx, ev.Channel); err != nil {
			obslog.L().Error("clear_pending_failed", zap.String("channel", ev.Channel), zap.Error(err))
		}
	case *fchat.ChannelLeave:
		if ev.Character == r.botName {
			if err := r.store.DeleteChannel(ctx, ev.Channel); err != nil {
				obslog.L().Error("delete_channel_failed", zap.String("channel", ev.Channel), zap.Error(err))
			}
			return
		}
		text, err := r.engine.Leave(ctx, ev.Channel, ev.Character, true)
		r.reply(ev.Channel, text, err)
	case *fchat.Offline:
		r.offline(ctx, ev.Character)
	case *fchat.ChannelOps:
		if err := r.store.SetMods(ctx, ev.Channel, ev.Ops); err != nil {
			obslog.L().Error("set_mods_failed", zap.String("channel", ev.Channel), zap.Error(err))
		}
	}
}

// offline drops the character from every channel's roster, announcing in
// each channel they were actually playing in.
func (r *Router) offline(ctx context.Context, character string) {
	channels, err := r.store.ChannelsWithPlayer(ctx, character)
	if err != nil {
		obslog.L().Error("channels_with_player_failed", zap.String("character", character), zap.Error(err))
		return
	}
	for _, ch := range channels {
		text, err := r.engine.Leave(ctx, ch, character, true)
		r.reply(ch, text, err)
	}
}

// reply delivers an engine result: store failures become the retry message,
// an empty reply is suppressed.
func (r *Router) reply(channel, text string, err error) {
	if err != nil {
		obslog.L().Error("command_failed", zap.String("channel", channel), zap.Error(err))
		r.out.Say(channel, tryAgainMsg)
		return
	}
	if text != "" {
		r.out.Say(channel, text)
	}
}

func (r *Router) groupCommand(ctx context.Context, m *fchat.ChannelMessage) {
	trimmed := strings.TrimSpace(m.Message)
	lower := strings.ToLower(trimmed)

	switch {
	case lower == "hey game bot":
		r.out.Say(m.Channel, fmt.Sprintf("Hey yourself, %s!", game.UserTag(m.Character)))
	case matches(joinAliases, lower):
		text, err := r.engine.Join(ctx, m.Channel, m.Character)
		r.reply(m.Channel, text, err)
	case matches(leaveAliases, lower):
		text, err := r.engine.Leave(ctx, m.Channel, m.Character, false)
		r.reply(m.Channel, text, err)
	case matches(statusAliases, lower):
		text, err := r.engine.Status(ctx, m.Channel)
		r.reply(m.Channel, text, err)
	case matches(spinAliases, lower):
		text, err := r.engine.Spin(ctx, m.Channel, m.Character)
		r.reply(m.Channel, text, err)
	case lower == "!spinback":
		text, err := r.engine.ToggleSpinback(ctx, m.Channel)
		r.reply(m.Channel, text, err)
	case lower == "!kick" || strings.HasPrefix(lower, "!kick "):
		target := strings.TrimSpace(trimmed[len("!kick"):])
		if target == "" {
			r.out.Say(m.Channel, "Who am I kicking? Try !kick <name>.")
			return
		}
		text, err := r.engine.Kick(ctx, m.Channel, target)
		r.reply(m.Channel, text, err)
	case lower == "!drrules":
		r.out.Say(m.Channel, game.DeathRollRules())
	// Prefix match, so it must sit below the exact !drrules case.
	case lower == "!dr" || strings.HasPrefix(lower, "!dr "):
		arg := strings.TrimSpace(trimmed[len("!dr"):])
		r.out.Say(m.Channel, r.engine.DeathRoll(m.Channel, m.Character, arg))
	case lower == "!roll" || strings.HasPrefix(lower, "!roll "):
		r.out.Say(m.Channel, r.engine.RollDice(m.Character, trimmed[len("!roll"):]))
	case lower == "!dice" || strings.HasPrefix(lower, "!dice "):
		r.out.Say(m.Channel, r.engine.RollDice(m.Character, trimmed[len("!dice"):]))
	case lower == "!8ball" || strings.HasPrefix(lower, "!8ball "):
		text, err := r.catalog.EightBall()
		r.content(m.Channel, text, err)
	case lower == "!item":
		text, err := r.catalog.Item(game.UserTag(m.Character))
		r.content(m.Channel, text, err)
	case lower == "!curse":
		text, err := r.catalog.Curse(game.UserTag(m.Character))
		r.content(m.Channel, text, err)
	case lower == "!quest":
		text, err := r.catalog.Quest(game.UserTag(m.Character))
		r.content(m.Channel, text, err)
	case lower == "!pokemon":
		text, err := r.catalog.Pokemon(game.UserTag(m.Character))
		r.content(m.Channel, text, err)
	case lower == "!help":
		r.out.Say(m.Channel, helpText())
	}
}

func (r *Router) content(channel string, text string, err error) {
	if err != nil {
		obslog.L().Error("content_render_failed", zap.Error(err))
		return
	}
	r.out.Say(channel, text)
}

func (r *Router) privateCommand(ctx context.Context, m *fchat.PrivateMessage) {
	trimmed := strings.TrimSpace(m.Message)
	cmd, rest := splitCommand(trimmed)

	if r.admins[strings.ToLower(m.Character)] {
		if r.adminCommand(ctx, m.Character, cmd, rest) {
			return
		}
	}

	switch cmd {
	case "!help":
		r.out.Whisper(m.Character, helpText())
	case "!drrules":
		r.out.Whisper(m.Character, game.DeathRollRules())
	default:
		r.out.Whisper(m.Character, "I mostly work in channels. Try !help.")
	}
}

// adminCommand handles the elevated PM surface; it reports whether the
// command was one of its own.
func (r *Router) adminCommand(ctx context.Context, from, cmd, rest string) bool {
	switch cmd {
	case "!broadcast", "!update":
		if rest == "" {
			r.out.Whisper(from, "Nothing to send. Give me a message.")
			return true
		}
		msg := rest
		if cmd == "!update" {
			msg = game.Bold("Update:") + " " + rest
		}
		channels, err := r.store.ListChannels(ctx)
		if err != nil {
			obslog.L().Error("list_channels_failed", zap.Error(err))
			r.out.Whisper(from, tryAgainMsg)
			return true
		}
		for _, ch := range channels {
			r.out.Say(ch.ID, msg)
		}
		r.out.Whisper(from, fmt.Sprintf("Queued for %d channels.", len(channels)))
	case "!channels":
		channels, err := r.store.ListChannels(ctx)
		if err != nil {
			obslog.L().Error("list_channels_failed", zap.Error(err))
			r.out.Whisper(from, tryAgainMsg)
			return true
		}
		if len(channels) == 0 {
			r.out.Whisper(from, "Not in any channels.")
			return true
		}
		lines := make([]string, len(channels))
		for i, ch := range channels {
			lines[i] = fmt.Sprintf("%s — %s", ch.ID, ch.Title)
		}
		r.out.Whisper(from, strings.Join(lines, "\n"))
	case "!leavechannel":
		id := strings.TrimSpace(rest)
		if id == "" {
			r.out.Whisper(from, "Which channel? Try !leavechannel <id>.")
			return true
		}
		r.out.Push("LCH", fchat.LCH{Channel: id})
		if err := r.store.DeleteChannel(ctx, id); err != nil {
			obslog.L().Error("delete_channel_failed", zap.String("channel", id), zap.Error(err))
			r.out.Whisper(from, tryAgainMsg)
			return true
		}
		r.out.Whisper(from, fmt.Sprintf("Left %s.", id))
	case "!say":
		var id, msg string
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			id, msg = rest[:i], strings.TrimSpace(rest[i:])
		}
		if id == "" || msg == "" {
			r.out.Whisper(from, "Try !say <channel> <message>.")
			return true
		}
		r.out.Say(id, msg)
	default:
		return false
	}
	return true
}

// splitCommand separates the first word (lowercased) from the remainder,
// preserving the remainder's casing.
func splitCommand(s string) (cmd, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return strings.ToLower(s[:i]), strings.TrimSpace(s[i:])
	}
	return strings.ToLower(s), ""
}

func matches(aliases []string, msg string) bool {
	for _, a := range aliases {
		if msg == a {
			return true
		}
	}
	return false
}

func helpText() string {
	return strings.Join([]string{
		game.Bold("Game Bot commands:"),
		"!join / !optin / !yesspin — join the bottle game",
		"!leave / !optout / !nospin — leave the game",
		"!status / !ready — who's playing",
		"!spin / !bottle — spin the bottle",
		"!spinback — toggle the no-return rule",
		"!kick <name> — remove a player",
		"!dr <2-1000> — start or continue a death roll (!drrules for rules)",
		"!roll / !dice <dice> — roll dice, e.g. 2d6+3",
		"!8ball <question>, !item, !curse, !quest, !pokemon — ask the fates",
	}, "\n")
}
