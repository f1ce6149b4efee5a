package types

import "strings"

// Command is one routed request for the lamp. Path is relative to the lamp
// root, e.g. {"cmnd","power"} or {"config","sunrise_minutes","set"}.
type Command struct {
	Path   []string `json:"path"`
	Arg    string   `json:"arg,omitempty"`
	Source string   `json:"source,omitempty"` // "mqtt", "console", "schedule", ...
}

// Cmd builds a {"cmnd",name} command.
func Cmd(name, arg string) Command {
	return Command{Path: []string{"cmnd", name}, Arg: arg}
}

// ConfigSet builds a {"config",key,"set"} command.
func ConfigSet(key, value string) Command {
	return Command{Path: []string{"config", key, "set"}, Arg: value}
}

// Route joins the path with '/'.
func (c Command) Route() string { return strings.Join(c.Path, "/") }
