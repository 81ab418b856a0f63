package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// Helper functions shared by every loader in this package.  A value that is
// unset, empty or unparsable yields the default.

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    switch strings.ToLower(os.Getenv(k)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if v == "0" {
        return 0
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}

func envList(k, d string) []string {
    var out []string
    for _, p := range strings.Split(envStr(k, d), ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
