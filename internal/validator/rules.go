package validator

import (
	"regexp"
)

// Format patterns. CPF separators are unescaped: any single
// character is accepted between the digit groups unless StrictCPF is set.
const (
	cpfPattern       = `^\d{3}.\d{3}.\d{3}-\d{2}$`
	strictCPFPattern = `^\d{3}\.\d{3}\.\d{3}-\d{2}$`
	phonePattern     = `^\([1-9]{2}\) 9[0-9]{3}-[0-9]{5}$`
	nationalPattern  = `^\([1-9]{2}\) 9[0-9]{4}-[0-9]{4}$`
	datePattern      = `^\d{2}/\d{2}/\d{4}$`
	agePattern       = `^\d{1,3}$`
)

const (
	// MaxNameLength is the exclusive upper bound on name length, in runes.
	MaxNameLength = 25
	// EmailDomain is the only domain an expected address is built with.
	EmailDomain = "gmail.com"
)

// Options tunes rule construction.
type Options struct {
	// StrictCPF requires literal periods between the CPF digit groups.
	StrictCPF bool
	// NationalPhone accepts the usual "(xx) 9xxxx-xxxx" mobile layout
	// instead of the legacy "(xx) 9xxx-xxxxx" one. A record with
	// "(11) 98888-7777" only passes with this set.
	NationalPhone bool
}

// Rules holds the compiled patterns. It is read-only after construction and
// safe for concurrent use.
type Rules struct {
	cpf       *regexp.Regexp
	phone     *regexp.Regexp
	phoneHint string
	date      *regexp.Regexp
	age       *regexp.Regexp
}

var (
	cpfRE       = regexp.MustCompile(cpfPattern)
	strictCPFRE = regexp.MustCompile(strictCPFPattern)
	phoneRE     = regexp.MustCompile(phonePattern)
	nationalRE  = regexp.MustCompile(nationalPattern)
	dateRE      = regexp.MustCompile(datePattern)
	ageRE       = regexp.MustCompile(agePattern)
)

// RulesFor assembles a rule set from the package's compiled patterns.
func RulesFor(opts Options) *Rules {
	r := &Rules{
		cpf:       cpfRE,
		phone:     phoneRE,
		phoneHint: "(xx) 9xxx-xxxxx",
		date:      dateRE,
		age:       ageRE,
	}
	if opts.StrictCPF {
		r.cpf = strictCPFRE
	}
	if opts.NationalPhone {
		r.phone = nationalRE
		r.phoneHint = "(xx) 9xxxx-xxxx"
	}
	return r
}
