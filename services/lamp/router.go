package lamp

import (
	"errors"
	"strconv"
	"strings"

	"lampcode-go/errcode"
	"lampcode-go/services/lamp/anim"
	"lampcode-go/types"
	"lampcode-go/x/mathx"
	"lampcode-go/x/strx"
)

// Handle routes one command. Rejected commands leave the state untouched.
func (s *Service) Handle(cmd types.Command) error {
	err := s.route(cmd)
	s.metrics.Command(string(errcode.Of(err)))
	switch {
	case err == nil:
		s.log.Debug("command", "route", cmd.Route(), "arg", cmd.Arg, "source", cmd.Source)
	case errors.Is(err, errcode.NotActive):
		s.log.Debug("command ignored", "route", cmd.Route(), "error", err)
	default:
		s.log.Warn("command rejected", "route", cmd.Route(), "arg", cmd.Arg, "source", cmd.Source, "error", err)
	}
	return err
}

func (s *Service) route(cmd types.Command) error {
	p := cmd.Path
	switch {
	case len(p) == 2 && p[0] == "cmnd":
		return s.command(p[1], cmd.Arg)
	case len(p) == 3 && p[0] == "config" && p[2] == "set":
		return s.configSet(p[1], cmd.Arg)
	case len(p) == 2 && p[0] == "config":
		return s.configVerb(p[1])
	case len(p) == 1 && p[0] == "button":
		ev := types.ParseButtonEvent(strx.Norm(cmd.Arg))
		if ev == types.ButtonNone {
			return errcode.Wrap(errcode.InvalidPayload, "button", cmd.Arg)
		}
		s.HandleButton(ev)
		return nil
	}
	return errcode.Wrap(errcode.UnknownCommand, cmd.Route(), "")
}

// -----------------------------------------------------------------------------
// cmnd/<name>
// -----------------------------------------------------------------------------

func (s *Service) command(name, arg string) error {
	op := "cmnd/" + name
	v := strx.Norm(arg)
	switch name {
	case "power":
		switch v {
		case "toggle", "":
			s.st.TogglePower()
		case "on", "1", "true":
			s.st.SetPower(true)
		case "off", "0", "false":
			s.st.SetPower(false)
		default:
			return errcode.Wrap(errcode.InvalidPayload, op, arg)
		}
		s.afterPower()
		return nil

	case "brightness":
		n, err := strconv.Atoi(v)
		if err != nil {
			return errcode.Wrap(errcode.InvalidPayload, op, arg)
		}
		s.st.Brightness = mathx.Percent(n)
		s.st.PowerOn = s.st.Brightness > 0
		s.st.BumpVersion()
		if !s.st.PowerOn {
			s.eng.Stop()
		}
		return nil

	case "color", "colour":
		c, err := types.ParseColor(arg)
		if err != nil {
			return errcode.Wrap(errcode.InvalidPayload, op, err.Error())
		}
		s.st.SetColor(c)
		return nil

	case "mode":
		switch v {
		case "static":
			s.eng.Stop()
		case "animation":
			s.eng.StartSunrise(nil, nil, nil)
		default:
			return errcode.Wrap(errcode.InvalidPayload, op, arg)
		}
		return nil

	case "animation", "anim":
		return s.animation(arg)

	case "pause":
		return s.pause(v)

	case "apply_defaults", "defaults":
		s.applyDefaults()
		s.eng.Stop()
		return nil
	}
	return errcode.Wrap(errcode.UnknownCommand, op, "")
}

func (s *Service) animation(arg string) error {
	switch strx.Norm(arg) {
	case "stop", "none", "off":
		s.eng.Stop()
		return nil
	case "favorite", "favourite":
		s.eng.StartFavorite()
		return nil
	}
	eff, p, err := anim.ParseSpec(strings.TrimSpace(arg))
	if err != nil {
		return err
	}
	s.eng.Start(eff, p)
	return nil
}

func (s *Service) pause(v string) error {
	if !s.eng.IsActive() {
		return errcode.Wrap(errcode.NotActive, "cmnd/pause", "no effect running")
	}
	switch v {
	case "toggle", "":
		s.eng.TogglePause()
	case "true", "1", "on":
		s.eng.SetPaused(true)
	case "false", "0", "off":
		s.eng.SetPaused(false)
	default:
		return errcode.Wrap(errcode.InvalidPayload, "cmnd/pause", v)
	}
	return nil
}

// afterPower restores a usable look when powering on at zero brightness and
// stops any effect when powering off.
func (s *Service) afterPower() {
	if s.st.PowerOn && s.st.Brightness == 0 {
		s.applyDefaults()
	}
	if !s.st.PowerOn {
		s.eng.Stop()
	}
}

func (s *Service) applyDefaults() {
	s.st.Color = s.cfg.DefaultColor
	s.st.Brightness = s.cfg.DefaultBrightness
	s.st.PowerOn = true
	s.st.BumpVersion()
}

// -----------------------------------------------------------------------------
// config/...
// -----------------------------------------------------------------------------

func (s *Service) configSet(key, value string) error {
	if err := s.cfg.Set(key, value); err != nil {
		return err
	}
	s.dirty = true
	s.publishConfig()
	return nil
}

func (s *Service) configVerb(verb string) error {
	switch verb {
	case "save":
		if !s.dirty {
			return nil
		}
		if err := s.store.Save(s.ctx, &s.cfg); err != nil {
			return &errcode.E{C: errcode.StoreFailed, Op: "config/save", Err: err}
		}
		s.dirty = false
		s.log.Info("config saved", "version", s.cfg.Version)
	case "reset":
		d, err := s.store.Reset(s.ctx)
		if err != nil {
			return &errcode.E{C: errcode.StoreFailed, Op: "config/reset", Err: err}
		}
		s.cfg = d
		s.dirty = false
		s.log.Info("config reset", "version", s.cfg.Version)
	case "request", "get":
	default:
		return errcode.Wrap(errcode.UnknownCommand, "config/"+verb, "")
	}
	s.publishConfig()
	return nil
}

// -----------------------------------------------------------------------------
// Button
// -----------------------------------------------------------------------------

// HandleButton maps a classified press: single toggles power, long toggles
// pause, double starts the favourite.
func (s *Service) HandleButton(ev types.ButtonEvent) {
	switch ev {
	case types.ButtonSingle:
		s.st.TogglePower()
		s.afterPower()
	case types.ButtonLong:
		s.eng.TogglePause()
	case types.ButtonDouble:
		s.eng.StartFavorite()
	default:
		return
	}
	s.log.Debug("button", "event", ev.String())
}
