// Package console turns text commands into lamp commands.
package console

import (
	"strings"

	"github.com/google/shlex"

	"lampcode-go/errcode"
	"lampcode-go/types"
	"lampcode-go/x/strx"
)

const op = "console"

// ParseLine parses one console line. Empty lines and comments return a
// zero Command with ok false.
func ParseLine(line string) (cmd types.Command, ok bool, err error) {
	words, err := shlex.Split(line)
	if err != nil {
		return types.Command{}, false, errcode.Wrap(errcode.InvalidPayload, op, err.Error())
	}
	if len(words) == 0 {
		return types.Command{}, false, nil
	}
	verb := strx.Norm(words[0])
	args := words[1:]
	arg := func() string { return strings.Join(args, " ") }

	switch verb {
	case "power", "brightness", "mode":
		if len(args) != 1 {
			return bad(verb + " takes one argument")
		}
		cmd = types.Cmd(verb, args[0])
	case "color", "colour":
		switch len(args) {
		case 1:
			cmd = types.Cmd("color", args[0])
		case 3:
			cmd = types.Cmd("color", strings.Join(args, ","))
		default:
			return bad("color takes r,g,b or r g b")
		}
	case "animation", "anim":
		if len(args) == 0 {
			return bad("animation needs an effect")
		}
		cmd = types.Cmd("animation", arg())
	case "stop":
		cmd = types.Cmd("animation", "stop")
	case "favorite", "favourite":
		cmd = types.Cmd("animation", "favorite")
	case "pause":
		cmd = types.Cmd("pause", strx.Coalesce(arg(), "toggle"))
	case "defaults":
		cmd = types.Cmd("apply_defaults", "")
	case "button":
		if len(args) != 1 || types.ParseButtonEvent(strx.Norm(args[0])) == types.ButtonNone {
			return bad("button takes single, long or double")
		}
		cmd = types.Command{Path: []string{"button"}, Arg: strx.Norm(args[0])}
	case "config":
		if len(args) == 0 {
			return bad("config needs a key or save, reset, show")
		}
		switch sub := strx.Norm(args[0]); sub {
		case "save", "reset", "request":
			cmd = types.Command{Path: []string{"config", sub}}
		case "show":
			cmd = types.Command{Path: []string{"config", "request"}}
		default:
			if len(args) < 2 {
				return bad("config " + sub + " needs a value")
			}
			cmd = types.ConfigSet(sub, strings.Join(args[1:], " "))
		}
	default:
		if strings.HasPrefix(verb, "#") {
			return types.Command{}, false, nil
		}
		return types.Command{}, false, errcode.Wrap(errcode.UnknownCommand, op, verb)
	}
	cmd.Source = "console"
	return cmd, true, nil
}

func bad(msg string) (types.Command, bool, error) {
	return types.Command{}, false, errcode.Wrap(errcode.InvalidPayload, op, msg)
}
