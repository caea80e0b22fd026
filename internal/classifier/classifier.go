package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"LayoffTracker/internal/domain"
)

// Employee counts outside [MinEmployees, MaxEmployees) are treated as noise.
const (
	MinEmployees = 50
	MaxEmployees = 100000
)

// Rejection names the gate an article failed.
type Rejection string

const (
	Accepted          Rejection = ""
	RejectNoCompany   Rejection = "no_company"
	RejectUnconfirmed Rejection = "unconfirmed"
	RejectNoCount     Rejection = "no_count"
)

// Classification is the structured result for an article that passed every gate.
type Classification struct {
	Company   string
	Employees int
	Country   string
	Industry  string
}

type company struct {
	name     string
	keywords []string
}

type industry struct {
	name      string
	companies map[string]struct{}
}

// Classifier holds compiled, read-only rule tables. It is safe for concurrent use.
type Classifier struct {
	companies   []company
	confirmed   []string
	speculative []string
	india       []string
	industries  []industry
	patterns    []*regexp.Regexp
}

// New compiles a rule set. Every count pattern must have exactly one capture group.
func New(rules RuleSet) (*Classifier, error) {
	c := &Classifier{
		confirmed:   lowerAll(rules.ConfirmedTerms),
		speculative: lowerAll(rules.SpeculativeTerms),
		india:       lowerAll(rules.IndiaKeywords),
	}

	for _, rule := range rules.Companies {
		if rule.Name == "" {
			return nil, fmt.Errorf("company rule without name")
		}
		c.companies = append(c.companies, company{name: rule.Name, keywords: lowerAll(rule.Keywords)})
	}

	for _, group := range rules.Industries {
		members := make(map[string]struct{}, len(group.Companies))
		for _, name := range group.Companies {
			members[name] = struct{}{}
		}
		c.industries = append(c.industries, industry{name: group.Name, companies: members})
	}

	for _, expr := range rules.CountPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile count pattern %q: %w", expr, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("count pattern %q must have one capture group", expr)
		}
		c.patterns = append(c.patterns, re)
	}

	return c, nil
}

// MustDefault compiles DefaultRuleSet and panics on failure.
func MustDefault() *Classifier {
	c, err := New(DefaultRuleSet())
	if err != nil {
		panic(err)
	}
	return c
}

// ExtractCompany returns the first registered company whose keyword appears in
// the title. The description is never consulted.
func (c *Classifier) ExtractCompany(title string) (string, bool) {
	if title == "" {
		return "", false
	}
	lower := strings.ToLower(title)
	for _, co := range c.companies {
		for _, kw := range co.keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return co.name, true
			}
		}
	}
	return "", false
}

// ExtractEmployeeCount scans title and description with the count patterns in
// priority order and returns the first in-range figure. Bare calendar years
// ("2024 layoffs") are not counts.
func (c *Classifier) ExtractEmployeeCount(title, description string) (int, bool) {
	text := title + " " + description
	for _, re := range c.patterns {
		token, ok := firstCount(re, text)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
		if err != nil {
			continue
		}
		if n >= MinEmployees && n < MaxEmployees {
			return n, true
		}
	}
	return 0, false
}

func firstCount(re *regexp.Regexp, text string) (string, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if !isYear(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

// isYear matches an ungrouped 19xx or 20xx token.
func isYear(token string) bool {
	return len(token) == 4 && (strings.HasPrefix(token, "19") || strings.HasPrefix(token, "20"))
}

// IsConfirmed reports whether the title describes a layoff that already
// happened. Any speculative term wins over confirmed ones.
func (c *Classifier) IsConfirmed(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	if containsAny(lower, c.speculative) {
		return false
	}
	return containsAny(lower, c.confirmed)
}

// ClassifyRegion is a binary India/USA classifier over title and description.
func (c *Classifier) ClassifyRegion(title, description string) string {
	text := strings.ToLower(title + " " + description)
	if containsAny(text, c.india) {
		return domain.CountryIndia
	}
	return domain.CountryUSA
}

// ClassifyIndustry looks the company up in the industry groups.
func (c *Classifier) ClassifyIndustry(companyName string) string {
	for _, group := range c.industries {
		if _, ok := group.companies[companyName]; ok {
			return group.name
		}
	}
	return domain.DefaultIndustry
}

// Classify runs the company, confirmation and count gates in that order and
// derives region and industry for articles that pass.
func (c *Classifier) Classify(article domain.Article) (Classification, Rejection) {
	name, ok := c.ExtractCompany(article.Title)
	if !ok {
		return Classification{}, RejectNoCompany
	}
	if !c.IsConfirmed(article.Title) {
		return Classification{}, RejectUnconfirmed
	}
	count, ok := c.ExtractEmployeeCount(article.Title, article.Description)
	if !ok {
		return Classification{}, RejectNoCount
	}

	return Classification{
		Company:   name,
		Employees: count,
		Country:   c.ClassifyRegion(article.Title, article.Description),
		Industry:  c.ClassifyIndustry(name),
	}, Accepted
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
