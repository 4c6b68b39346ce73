package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// invocation is one parsed command line: `<command> [sub] [--key [value]]...`.
type invocation struct {
	command    string
	subcommand string
	values     map[string]string
	flags      map[string]bool
	positional []string
}

func (inv invocation) key() string {
	return inv.command + ":" + inv.subcommand
}

// takeGlobalOption removes `name value` from tokens wherever it appears.
func takeGlobalOption(tokens []string, name string) ([]string, string, error) {
	for i, token := range tokens {
		if token != name {
			continue
		}
		if i+1 >= len(tokens) || strings.HasPrefix(tokens[i+1], "--") {
			return nil, "", fmt.Errorf("Missing value for %s", name)
		}
		value := tokens[i+1]
		rest := append(append([]string{}, tokens[:i]...), tokens[i+2:]...)
		return rest, value, nil
	}
	return tokens, "", nil
}

// parseInvocation splits tokens into command, optional subcommand and options.
// An option followed by another option, or by nothing, is a bare flag.
func parseInvocation(tokens []string) invocation {
	inv := invocation{command: "help", values: map[string]string{}, flags: map[string]bool{}}
	if len(tokens) > 0 {
		inv.command = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) > 0 && !strings.HasPrefix(tokens[0], "--") {
		inv.subcommand = tokens[0]
		tokens = tokens[1:]
	}

	for len(tokens) > 0 {
		token := tokens[0]
		tokens = tokens[1:]
		if !strings.HasPrefix(token, "--") {
			inv.positional = append(inv.positional, token)
			continue
		}
		name := strings.TrimPrefix(token, "--")
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "--") {
			inv.flags[name] = true
			delete(inv.values, name)
			continue
		}
		inv.values[name] = tokens[0]
		delete(inv.flags, name)
		tokens = tokens[1:]
	}
	return inv
}

// required returns the non-empty value of --name.
func (inv invocation) required(name string) (string, error) {
	value := inv.values[name]
	if value == "" {
		return "", fmt.Errorf("Missing --%s", name)
	}
	return value, nil
}

// optional returns the value of --name, or "" when absent or bare.
func (inv invocation) optional(name string) string {
	return inv.values[name]
}

// optionalPtr is optional as a pointer, nil when empty.
func (inv invocation) optionalPtr(name string) *string {
	if value := inv.values[name]; value != "" {
		return &value
	}
	return nil
}

// flag reports whether --name was given at all.
func (inv invocation) flag(name string) bool {
	if inv.flags[name] {
		return true
	}
	_, ok := inv.values[name]
	return ok
}

var errInvalidHoursList = errors.New("Invalid hours list. Use comma-separated numbers like `72,24,3,0`.")

// parseHoursList reads a comma separated list of non-negative hours.
func parseHoursList(value string) ([]float64, error) {
	if value == "" {
		return []float64{}, nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, errInvalidHoursList
		}
	}
	hours := make([]float64, 0, len(parts))
	for _, part := range parts {
		n, ok := parseNonNegative(part)
		if !ok {
			return nil, fmt.Errorf("Invalid hours list entry: %s", part)
		}
		hours = append(hours, n)
	}
	return hours, nil
}

// optionalHours reads --name as a non-negative number when present.
func (inv invocation) optionalHours(name string) (*float64, error) {
	if !inv.flag(name) {
		return nil, nil
	}
	n, ok := parseNonNegative(strings.TrimSpace(inv.values[name]))
	if !ok {
		return nil, fmt.Errorf("Invalid --%s value. Expected a non-negative number.", name)
	}
	return &n, nil
}

func parseNonNegative(value string) (float64, bool) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, false
	}
	return n, true
}
