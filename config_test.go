package main

import (
	"io"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func TestParseConfigDefaults(t *testing.T) {
	c, err := parseConfig(nil, noEnv, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	ExpectEqual(t, "127.0.0.1:8080", c.Addr())
	ExpectEqual(t, dispatchRandom, c.Dispatch)
	ExpectEqual(t, "GET", strings.Join(c.AllowedMethods, ","))
	if c.Workers != 20 {
		t.Errorf("got %d workers, want 20", c.Workers)
	}
	if c.MaxRequestSize != 1<<20 {
		t.Errorf("got max request %d, want %d", c.MaxRequestSize, 1<<20)
	}
	if c.ReadTimeout != 0 {
		t.Errorf("got read timeout %v, want none", c.ReadTimeout)
	}
}

func TestParseConfigPositionalPort(t *testing.T) {
	c, err := parseConfig([]string{"-port", "9000", "3000"}, noEnv, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	ExpectEqual(t, "3000", c.Port)

	if _, err := parseConfig([]string{"3000", "4000"}, noEnv, io.Discard); err == nil {
		t.Error("expected error for two positional arguments")
	}
}

func TestParseConfigFlags(t *testing.T) {
	c, err := parseConfig([]string{
		"-host", "0.0.0.0", "-workers", "4", "-dispatch", "shared",
		"-allow", "GET, HEAD", "-read-timeout", "5s", "-dir", "/srv/www",
	}, noEnv, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	ExpectEqual(t, "0.0.0.0:8080", c.Addr())
	ExpectEqual(t, dispatchShared, c.Dispatch)
	ExpectEqual(t, "GET|HEAD", strings.Join(c.AllowedMethods, "|"))
	ExpectEqual(t, "/srv/www", c.Dir)
	if c.Workers != 4 || c.ReadTimeout != 5*time.Second {
		t.Errorf("got workers=%d read-timeout=%v", c.Workers, c.ReadTimeout)
	}
}

func TestParseConfigEnv(t *testing.T) {
	env := map[string]string{
		"WILLSERV_PORT":      "7070",
		"WILLSERV_LOG_LEVEL": "debug",
		"WILLSERV_WORKERS":   "8",
	}
	getenv := func(k string) string { return env[k] }

	c, err := parseConfig(nil, getenv, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	ExpectEqual(t, "7070", c.Port)
	ExpectEqual(t, "debug", c.LogLevel)

	c, err = parseConfig([]string{"-workers", "2"}, getenv, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers != 2 {
		t.Errorf("flag should override env, got %d workers", c.Workers)
	}

	env["WILLSERV_WORKERS"] = "many"
	if _, err := parseConfig(nil, getenv, io.Discard); err == nil {
		t.Error("expected error for invalid env value")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"-workers", "0"},
		{"-dispatch", "least-loaded"},
		{"-allow", " , "},
		{"-max-request", "2"},
		{"-read-timeout", "-1s"},
		{"-port", ""},
		{"-unknown"},
	} {
		if _, err := parseConfig(args, noEnv, io.Discard); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(io.Discard, "info", logFormatJSON); err != nil {
		t.Error(err)
	}
	if _, err := newLogger(io.Discard, "debug", logFormatConsole); err != nil {
		t.Error(err)
	}
	if _, err := newLogger(io.Discard, "loud", logFormatJSON); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := newLogger(io.Discard, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
