package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/refermarket/backend/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Result is the outcome of validating a submitted referral value.
type Result struct {
	Valid bool
	Error string
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	ipv4Host     = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
)

// Normalize applies NFKC normalization and trims surrounding whitespace.
// Callers persist the normalized form, never the raw input.
func Normalize(value string) string {
	return strings.TrimSpace(norm.NFKC.String(value))
}

// Validate checks a submitted value against a platform's rule set for the
// given kind. Checks run in order and short-circuit on the first failure.
// Rule-set failures (length, pattern, case) surface the platform's
// configured invalid message when present.
func Validate(kind models.ReferralKind, rules *models.ValidationRules, value string) Result {
	value = Normalize(value)

	if value == "" {
		return fail(rules, fmt.Sprintf("%s must not be empty", kind))
	}

	if controlChars.MatchString(value) {
		return Result{Valid: false, Error: "invalid characters detected"}
	}

	if kind == models.KindLink {
		if err := validateURL(value); err != nil {
			return Result{Valid: false, Error: err.Error()}
		}
	}

	if rules == nil {
		// Platform declares no rules for this kind; structural checks passed
		return Result{Valid: true}
	}

	// Length rules count characters, not bytes
	length := utf8.RuneCountInString(value)
	if rules.MinLength > 0 && length < rules.MinLength {
		return fail(rules, fmt.Sprintf("%s must be at least %d characters long", kind, rules.MinLength))
	}
	if rules.MaxLength > 0 && length > rules.MaxLength {
		return fail(rules, fmt.Sprintf("%s must be no more than %d characters long", kind, rules.MaxLength))
	}

	if rules.Pattern != "" {
		re, err := compileAnchored(rules.Pattern)
		if err != nil {
			// A broken platform pattern must never admit bad values
			return fail(rules, fmt.Sprintf("%s format is invalid", kind))
		}
		if !re.MatchString(value) {
			return fail(rules, fmt.Sprintf("%s format is invalid", kind))
		}
	}

	switch rules.Case {
	case "upper":
		if value != strings.ToUpper(value) {
			return fail(rules, fmt.Sprintf("%s must be in uppercase", kind))
		}
	case "lower":
		if value != strings.ToLower(value) {
			return fail(rules, fmt.Sprintf("%s must be in lowercase", kind))
		}
	}

	return Result{Valid: true}
}

// validateURL enforces the link hardening rules: absolute http(s) URL,
// no IPv4-literal hosts, no non-ASCII (lookalike) characters anywhere
// in the raw string.
func validateURL(raw string) error {
	for _, r := range raw {
		if r > 0x7F {
			return fmt.Errorf("invalid URL format")
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL format")
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("invalid URL format")
	}
	if ipv4Host.MatchString(parsed.Hostname()) {
		return fmt.Errorf("invalid URL format")
	}
	return nil
}

// compileAnchored compiles pattern so the entire value must match,
// wrapping it in a non-capturing group unless already anchored both ends.
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "^") || !strings.HasSuffix(pattern, "$") {
		pattern = "^(?:" + pattern + ")$"
	}
	return regexp.Compile(pattern)
}

func fail(rules *models.ValidationRules, generic string) Result {
	if rules != nil && rules.InvalidMessage != "" {
		return Result{Valid: false, Error: rules.InvalidMessage}
	}
	return Result{Valid: false, Error: generic}
}
