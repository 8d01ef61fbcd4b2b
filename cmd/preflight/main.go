// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	apiAddr := strings.TrimSpace(os.Getenv("ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dataDir := strings.TrimSpace(os.Getenv("DATA_DIR"))
	allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	refresh := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL_MS"))
	webhook := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (admin routes will be open to anyone).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will be open to anyone).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if apiAddr == "" {
		warn("ADDR is empty; default in your app may be used.")
	} else {
		ok("ADDR=" + apiAddr)
	}

	if db == "" {
		if dataDir == "" {
			warn("DATABASE_URL and DATA_DIR empty — server list falls back to ./data/servers.json.")
		} else {
			ok("DATA_DIR=" + dataDir)
		}
	} else {
		ok("DATABASE_URL present")
	}

	if allowed == "" {
		warn("ALLOWED_ORIGINS empty — CORS falls back to allow-all; set it to restrict browser origins.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	if webhook != "" && refresh == "" {
		warn("DISCORD_WEBHOOK set but REFRESH_INTERVAL_MS empty — alerter only runs with the background refresher.")
	}
	if refresh != "" {
		if n, err := strconv.Atoi(refresh); err != nil || n < 0 {
			fail("REFRESH_INTERVAL_MS is not a non-negative integer: " + refresh)
		} else if n > 0 && n < 5000 {
			warn("REFRESH_INTERVAL_MS under 5s will probe the fleet very aggressively.")
		}
	}

	ok("preflight passed")
}
