// Package ipaddr classifies and normalizes textual IP addresses.
package ipaddr

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeIPv4    Type = "ipv4"
	TypeIPv6    Type = "ipv6"
	TypeInvalid Type = "invalid"
)

// Classify reports whether s is a well-formed IPv4 address, a well-formed
// IPv6 address, or neither. It accepts exactly four dot-separated decimal
// groups in [0,255] for IPv4, and eight colon-separated hextets or a valid
// "::" compression (including "::" and "::1") for IPv6.
func Classify(s string) Type {
	if isIPv4(s) {
		return TypeIPv4
	}
	if isIPv6(s) {
		return TypeIPv6
	}
	return TypeInvalid
}

type Validation struct {
	Valid bool
	Type  Type
	Err   error
}

// Validate trims surrounding whitespace and classifies the result.
func Validate(s string) Validation {
	trimmed := strings.TrimSpace(s)
	t := Classify(trimmed)
	if t == TypeInvalid {
		return Validation{
			Valid: false,
			Type:  TypeInvalid,
			Err:   fmt.Errorf("invalid IP address %q: expected IPv4 (e.g. 192.168.1.1) or IPv6 (e.g. 2001:db8::1)", trimmed),
		}
	}
	return Validation{Valid: true, Type: t}
}

// Normalize returns the canonical form of a valid address: IPv4 unchanged,
// IPv6 lowercased with the longest zero run compressed. The normalized form
// is what gets persisted and compared, so two spellings of the same IPv6
// address always match. Returns s unchanged when it is not a valid address.
func Normalize(s string) string {
	trimmed := strings.TrimSpace(s)
	switch Classify(trimmed) {
	case TypeIPv4:
		return trimmed
	case TypeIPv6:
		return canonicalIPv6(trimmed)
	}
	return trimmed
}

func isIPv4(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		if g == "" || len(g) > 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(g)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

func isIPv6(s string) bool {
	_, ok := parseIPv6(s)
	return ok
}

// parseIPv6 expands s into its eight hextet values. A single "::" may stand
// in for one or more zero hextets.
func parseIPv6(s string) ([8]uint16, bool) {
	var out [8]uint16
	if s == "" || strings.Contains(s, ":::") {
		return out, false
	}
	if strings.Count(s, "::") > 1 {
		return out, false
	}

	var head, tail []string
	if i := strings.Index(s, "::"); i >= 0 {
		if h := s[:i]; h != "" {
			head = strings.Split(h, ":")
		}
		if t := s[i+2:]; t != "" {
			tail = strings.Split(t, ":")
		}
		// "::" must replace at least one hextet.
		if len(head)+len(tail) > 7 {
			return out, false
		}
	} else {
		head = strings.Split(s, ":")
		if len(head) != 8 {
			return out, false
		}
	}

	fill := func(groups []string, offset int) bool {
		for i, g := range groups {
			v, ok := parseHextet(g)
			if !ok {
				return false
			}
			out[offset+i] = v
		}
		return true
	}
	if !fill(head, 0) {
		return out, false
	}
	if !fill(tail, 8-len(tail)) {
		return out, false
	}
	return out, true
}

func parseHextet(g string) (uint16, bool) {
	if g == "" || len(g) > 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(g, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// canonicalIPv6 re-renders the hextets per RFC 5952: lowercase hex, no
// leading zeros, longest zero run (length >= 2) compressed, earliest run wins.
func canonicalIPv6(s string) string {
	hextets, ok := parseIPv6(s)
	if !ok {
		return s
	}

	bestStart, bestLen := -1, 0
	for i := 0; i < 8; {
		if hextets[i] != 0 {
			i++
			continue
		}
		j := i
		for j < 8 && hextets[j] == 0 {
			j++
		}
		if j-i > bestLen {
			bestStart, bestLen = i, j-i
		}
		i = j
	}
	if bestLen < 2 {
		bestStart = -1
	}

	var b strings.Builder
	for i := 0; i < 8; i++ {
		if i == bestStart {
			b.WriteString("::")
			i += bestLen - 1
			continue
		}
		if i > 0 && !strings.HasSuffix(b.String(), "::") {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatUint(uint64(hextets[i]), 16))
	}
	if b.Len() == 0 {
		return "::"
	}
	return b.String()
}
