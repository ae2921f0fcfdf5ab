package usecase

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/paddle-league/internal/domain/identity"
)

const defaultSeriesPrefix = "Series"

// NamingRules converts scraped team and series labels into identities and display names.
// Identity values must stay stable across runs; display values may change.
type NamingRules interface {
	// SplitTeamLabel extracts the club name and the series suffix from a team label.
	SplitTeamLabel(label string) (club, suffix string, ok bool)
	// SeriesName returns the series identity for a raw series label or suffix.
	SeriesName(raw string) string
	SeriesDisplayName(name string) string
	TeamDisplayName(label string) string
	// TeamLabel returns the team identity label for a raw scraped label.
	TeamLabel(raw string) string
}

var teamLabelPattern = regexp.MustCompile(`^(.*?)[\s-]*[Ss]?(\d+[A-Za-z]*)$`)

// SeriesNaming is the default rule: series are named "<prefix> <suffix>" and displayed
// as "Series <suffix>".
type SeriesNaming struct {
	Prefix string
}

func (n SeriesNaming) prefix() string {
	if p := identity.Name(n.Prefix); p != "" {
		return p
	}
	return defaultSeriesPrefix
}

func (n SeriesNaming) SplitTeamLabel(label string) (string, string, bool) {
	value := identity.Name(label)
	if idx := strings.LastIndex(value, " - "); idx > 0 {
		club := strings.TrimSpace(value[:idx])
		suffix := seriesSuffix(value[idx+3:])
		if club == "" || suffix == "" {
			return "", "", false
		}
		return club, suffix, true
	}

	found := teamLabelPattern.FindStringSubmatch(value)
	if found == nil {
		return "", "", false
	}
	club := strings.TrimSpace(found[1])
	if club == "" {
		return "", "", false
	}
	return club, strings.ToUpper(found[2]), true
}

func (n SeriesNaming) SeriesName(raw string) string {
	suffix := seriesSuffix(raw)
	if suffix == "" {
		return ""
	}
	return n.prefix() + " " + suffix
}

func (n SeriesNaming) SeriesDisplayName(name string) string {
	suffix := seriesSuffix(name)
	if suffix == "" {
		return identity.Name(name)
	}
	return defaultSeriesPrefix + " " + suffix
}

func (n SeriesNaming) TeamDisplayName(label string) string {
	club, suffix, ok := n.SplitTeamLabel(label)
	if !ok {
		return identity.Name(label)
	}
	return club + " - " + suffix
}

func (n SeriesNaming) TeamLabel(raw string) string {
	return identity.Name(raw)
}

// seriesSuffix returns the trailing series token: "Chicago 22" -> "22", "S2B" -> "2B".
func seriesSuffix(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	token := strings.Trim(fields[len(fields)-1], "-")
	if len(token) > 1 && (token[0] == 'S' || token[0] == 's') && token[1] >= '0' && token[1] <= '9' {
		token = token[1:]
	}
	return strings.ToUpper(token)
}

// NamingBook selects naming rules per league.
type NamingBook struct {
	byLeague map[string]NamingRules
	fallback NamingRules
}

// NewNamingBook builds SeriesNaming rules from a league to series prefix map.
func NewNamingBook(prefixByLeague map[string]string) NamingBook {
	book := NamingBook{
		byLeague: make(map[string]NamingRules, len(prefixByLeague)),
		fallback: SeriesNaming{Prefix: defaultSeriesPrefix},
	}
	for code, prefix := range prefixByLeague {
		book.byLeague[identity.LeagueCode(code)] = SeriesNaming{Prefix: prefix}
	}
	return book
}

// With overrides the rule of one league.
func (b NamingBook) With(leagueCode string, rules NamingRules) NamingBook {
	out := NamingBook{byLeague: make(map[string]NamingRules, len(b.byLeague)+1), fallback: b.fallback}
	for k, v := range b.byLeague {
		out.byLeague[k] = v
	}
	out.byLeague[identity.LeagueCode(leagueCode)] = rules
	return out
}

func (b NamingBook) For(leagueCode string) NamingRules {
	if rules, ok := b.byLeague[identity.LeagueCode(leagueCode)]; ok {
		return rules
	}
	if b.fallback == nil {
		return SeriesNaming{Prefix: defaultSeriesPrefix}
	}
	return b.fallback
}

// TeamKey derives the natural key of a scraped team label.
func (b NamingBook) TeamKey(leagueCode, rawLabel string) (identity.TeamKey, bool) {
	rules := b.For(leagueCode)
	label := rules.TeamLabel(rawLabel)
	club, suffix, ok := rules.SplitTeamLabel(label)
	if !ok {
		return identity.TeamKey{}, false
	}
	return identity.TeamKey{
		League: identity.LeagueCode(leagueCode),
		Club:   club,
		Series: rules.SeriesName(suffix),
		Label:  label,
	}, true
}
