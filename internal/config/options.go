package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/worklog/internal/errors"
	"github.com/manav03panchal/worklog/internal/parser"
)

// option describes one settings key for the CLI.
type option struct {
	key   string
	help  string
	get   func(Configuration) string
	parse func(value string, p *Partial) error
}

var options = []option{
	{
		key:  "interval",
		help: "milliseconds between captures (also accepts durations like 5m)",
		get:  func(c Configuration) string { return strconv.Itoa(c.Interval) },
		parse: func(v string, p *Partial) error {
			n, err := parseInterval(v)
			if err != nil {
				return err
			}
			p.Interval = &n
			return nil
		},
	},
	boolOption("autoStart", "start recording when the daemon starts",
		func(c Configuration) bool { return c.AutoStart },
		func(p *Partial, b *bool) { p.AutoStart = b }),
	boolOption("notifications", "show a notification after each capture",
		func(c Configuration) bool { return c.Notifications },
		func(p *Partial, b *bool) { p.Notifications = b }),
	boolOption("startAtLogin", "start the daemon at login",
		func(c Configuration) bool { return c.StartAtLogin },
		func(p *Partial, b *bool) { p.StartAtLogin = b }),
	boolOption("gitEnabled", "commit every screenshot to git",
		func(c Configuration) bool { return c.GitEnabled },
		func(p *Partial, b *bool) { p.GitEnabled = b }),
	boolOption("compressToJpeg", "store screenshots as JPEG",
		func(c Configuration) bool { return c.CompressToJpeg },
		func(p *Partial, b *bool) { p.CompressToJpeg = b }),
	{
		key:  "jpegQuality",
		help: "JPEG quality, 0-100",
		get:  func(c Configuration) string { return strconv.Itoa(c.JpegQuality) },
		parse: func(v string, p *Partial) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 || n > 100 {
				return errors.ErrInvalidQuality
			}
			p.JpegQuality = &n
			return nil
		},
	},
	boolOption("createDailyReport", "build a report every day",
		func(c Configuration) bool { return c.CreateDailyReport },
		func(p *Partial, b *bool) { p.CreateDailyReport = b }),
	{
		key:  "dailyReportTime",
		help: "local time the daily report is built, HH:MM",
		get:  func(c Configuration) string { return c.DailyReportTime },
		parse: func(v string, p *Partial) error {
			tod, err := ParseTimeOfDay(v)
			if err != nil {
				return err
			}
			s := tod.String()
			p.DailyReportTime = &s
			return nil
		},
	},
	{
		key:  "saveDirectory",
		help: "directory for screenshots and reports (empty for default)",
		get:  func(c Configuration) string { return c.SaveDirectory },
		parse: func(v string, p *Partial) error {
			dir, err := expandDir(v)
			if err != nil {
				return err
			}
			p.SaveDirectory = &dir
			return nil
		},
	},
}

func boolOption(key, help string, get func(Configuration) bool, set func(*Partial, *bool)) option {
	return option{
		key:  key,
		help: help,
		get:  func(c Configuration) string { return strconv.FormatBool(get(c)) },
		parse: func(v string, p *Partial) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			set(p, &b)
			return nil
		},
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("expected true or false, got %q", v)
	}
	return b, nil
}

func parseInterval(v string) (int, error) {
	d, err := parser.ParseInterval(v)
	if err != nil {
		return 0, err
	}
	return int(d / time.Millisecond), nil
}

func expandDir(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if v == "~" || strings.HasPrefix(v, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		v = filepath.Join(home, strings.TrimPrefix(v, "~"))
	}
	return filepath.Abs(v)
}

func lookup(key string) (option, bool) {
	for _, o := range options {
		if strings.EqualFold(o.key, key) {
			return o, true
		}
	}
	return option{}, false
}

func unknownOption(key string) error {
	return &errors.UserError{
		Message:    "unknown configuration option",
		Suggestion: "Valid options: " + strings.Join(Keys(), ", "),
		Field:      "key",
		Value:      key,
		Cause:      errors.ErrUnknownOption,
	}
}

// Keys lists every settings key in document order.
func Keys() []string {
	keys := make([]string, len(options))
	for i, o := range options {
		keys[i] = o.key
	}
	return keys
}

// Help returns the description of key.
func Help(key string) string {
	if o, ok := lookup(key); ok {
		return o.help
	}
	return ""
}

// Value formats the value of key in c. Keys are case-insensitive.
func Value(c Configuration, key string) (string, error) {
	o, ok := lookup(key)
	if !ok {
		return "", unknownOption(key)
	}
	return o.get(c), nil
}

// ParsePartial turns a CLI key/value pair into a Partial.
func ParsePartial(key, value string) (Partial, error) {
	o, ok := lookup(key)
	if !ok {
		return Partial{}, unknownOption(key)
	}
	var p Partial
	if err := o.parse(value, &p); err != nil {
		return Partial{}, &errors.UserError{
			Message:    "invalid value for " + o.key,
			Suggestion: o.key + ": " + o.help,
			Field:      o.key,
			Value:      value,
			Cause:      err,
		}
	}
	return p, nil
}
