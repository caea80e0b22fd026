// Package classifier turns raw article text into structured layoff signals.
package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompanyRule maps a canonical company name to lowercase keyword variants.
type CompanyRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// IndustryGroup lists the companies that belong to one industry label.
type IndustryGroup struct {
	Name      string   `yaml:"name"`
	Companies []string `yaml:"companies"`
}

// RuleSet is the plain-data form of the classifier tables. Slice order is
// significant: companies, industry groups and count patterns are evaluated
// in the order listed.
type RuleSet struct {
	Companies        []CompanyRule   `yaml:"companies"`
	ConfirmedTerms   []string        `yaml:"confirmedTerms"`
	SpeculativeTerms []string        `yaml:"speculativeTerms"`
	IndiaKeywords    []string        `yaml:"indiaKeywords"`
	Industries       []IndustryGroup `yaml:"industries"`
	CountPatterns    []string        `yaml:"countPatterns"`
}

// number captures either a comma-grouped figure ("1,200") or a plain run of digits.
const number = `(\d{1,3}(?:,\d{3})+|\d+)`

// DefaultCountPatterns are the layoff phrasings tried in priority order.
var DefaultCountPatterns = []string{
	`(?i)lay(?:s|ing)?\s*off\s*` + number,
	`(?i)` + number + `\s*(?:employees?|workers?|jobs?|staff|people)\s*(?:laid\s*off|cut|fired|let\s*go)`,
	`(?i)cut(?:ting|s)?\s*` + number + `\s*(?:jobs?|employees?|workers?|positions?)`,
	`(?i)` + number + `\s*(?:layoffs?|job\s*cuts?)`,
	`(?i)eliminat(?:e|ing|es)\s*` + number + `\s*(?:jobs?|positions?|roles?)`,
	`(?i)slash(?:ing|es)?\s*` + number + `\s*(?:jobs?|employees?)`,
	`(?i)reduc(?:e|ing|es)\s*(?:workforce|staff|headcount)\s*by\s*` + number,
	`(?i)fir(?:e|ing|es)\s*` + number + `\s*(?:employees?|workers?)`,
}

// DefaultRuleSet returns the built-in registry of companies and keywords.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Companies: []CompanyRule{
			{Name: "Google", Keywords: []string{"google"}},
			{Name: "Meta", Keywords: []string{"meta", "facebook"}},
			{Name: "Microsoft", Keywords: []string{"microsoft"}},
			{Name: "Amazon", Keywords: []string{"amazon"}},
			{Name: "Apple", Keywords: []string{"apple"}},
			{Name: "Tesla", Keywords: []string{"tesla"}},
			{Name: "Netflix", Keywords: []string{"netflix"}},
			{Name: "Uber", Keywords: []string{"uber"}},
			{Name: "Spotify", Keywords: []string{"spotify"}},
			{Name: "Salesforce", Keywords: []string{"salesforce"}},
			{Name: "Intel", Keywords: []string{"intel"}},
			{Name: "IBM", Keywords: []string{"ibm"}},
			{Name: "Oracle", Keywords: []string{"oracle"}},
			{Name: "Cisco", Keywords: []string{"cisco"}},
			{Name: "Dell", Keywords: []string{"dell"}},
			{Name: "Nvidia", Keywords: []string{"nvidia"}},
			{Name: "AMD", Keywords: []string{"amd"}},
			{Name: "Samsung", Keywords: []string{"samsung"}},
			{Name: "Sony", Keywords: []string{"sony"}},
			{Name: "EA", Keywords: []string{"electronic arts"}},
			{Name: "Ubisoft", Keywords: []string{"ubisoft"}},
			{Name: "Disney", Keywords: []string{"disney"}},
			{Name: "Boeing", Keywords: []string{"boeing"}},
			{Name: "Ford", Keywords: []string{"ford"}},
			{Name: "Volkswagen", Keywords: []string{"volkswagen"}},
			{Name: "Walmart", Keywords: []string{"walmart"}},
			{Name: "Target", Keywords: []string{"target"}},
			{Name: "Mastercard", Keywords: []string{"mastercard"}},
			{Name: "Dow", Keywords: []string{"dow"}},
			{Name: "Accenture", Keywords: []string{"accenture"}},

			{Name: "Flipkart", Keywords: []string{"flipkart"}},
			{Name: "Swiggy", Keywords: []string{"swiggy"}},
			{Name: "Zomato", Keywords: []string{"zomato"}},
			{Name: "Ola", Keywords: []string{"ola"}},
			{Name: "Paytm", Keywords: []string{"paytm"}},
			{Name: "PhonePe", Keywords: []string{"phonepe"}},
			{Name: "CRED", Keywords: []string{"cred"}},
			{Name: "Razorpay", Keywords: []string{"razorpay"}},
			{Name: "BYJU'S", Keywords: []string{"byju"}},
			{Name: "Unacademy", Keywords: []string{"unacademy"}},
			{Name: "Vedantu", Keywords: []string{"vedantu"}},
			{Name: "Dunzo", Keywords: []string{"dunzo"}},
			{Name: "Meesho", Keywords: []string{"meesho"}},
			{Name: "Lenskart", Keywords: []string{"lenskart"}},
			{Name: "Nykaa", Keywords: []string{"nykaa"}},
			{Name: "BigBasket", Keywords: []string{"bigbasket"}},
			{Name: "Blinkit", Keywords: []string{"blinkit"}},
			{Name: "Cars24", Keywords: []string{"cars24"}},
			{Name: "Urban Company", Keywords: []string{"urban company"}},
			{Name: "Infosys", Keywords: []string{"infosys"}},
			{Name: "TCS", Keywords: []string{"tcs"}},
			{Name: "Wipro", Keywords: []string{"wipro"}},
			{Name: "HCL", Keywords: []string{"hcl"}},
			{Name: "Tech Mahindra", Keywords: []string{"tech mahindra"}},
			{Name: "Cognizant", Keywords: []string{"cognizant"}},
			{Name: "Freshworks", Keywords: []string{"freshworks"}},
			{Name: "OYO", Keywords: []string{"oyo"}},
			{Name: "ShareChat", Keywords: []string{"sharechat"}},
			{Name: "Groww", Keywords: []string{"groww"}},
		},
		ConfirmedTerms: []string{
			"laid off", "lays off", "layoffs", "fired", "cut", "cuts", "slashed",
			"eliminated", "axed", "let go", "downsized",
		},
		SpeculativeTerms: []string{
			"at risk", "could", "may", "might", "plans to", "planning", "considering", "considers",
			"expected to", "threatens", "warns", "fears", "potential", "proposed",
			"rumor", "rumour",
		},
		IndiaKeywords: []string{
			"india", "indian", "bangalore", "bengaluru", "mumbai", "delhi", "hyderabad",
			"chennai", "pune", "gurgaon", "noida",
			"flipkart", "swiggy", "zomato", "ola", "paytm", "byju", "unacademy", "vedantu",
			"dunzo", "meesho", "infosys", "tcs", "wipro", "hcl", "tech mahindra", "oyo",
			"freshworks", "sharechat", "nykaa", "bigbasket", "blinkit", "urban company",
			"cars24", "lenskart", "cred", "razorpay", "groww",
		},
		Industries: []IndustryGroup{
			{Name: "EdTech", Companies: []string{"BYJU'S", "Unacademy", "Vedantu"}},
			{Name: "E-Commerce", Companies: []string{"Flipkart", "Amazon", "Meesho", "Nykaa", "BigBasket", "Blinkit"}},
			{Name: "FinTech", Companies: []string{"Paytm", "PhonePe", "Razorpay", "CRED", "Groww", "Mastercard"}},
			{Name: "Food Delivery", Companies: []string{"Swiggy", "Zomato", "Dunzo"}},
			{Name: "Transportation", Companies: []string{"Ola", "Uber", "Tesla", "Ford", "Volkswagen", "Boeing"}},
			{Name: "Technology", Companies: []string{
				"Google", "Meta", "Microsoft", "Apple", "Intel", "IBM", "Oracle", "Cisco", "Dell",
				"Nvidia", "AMD", "Infosys", "TCS", "Wipro", "HCL", "Tech Mahindra", "Cognizant",
				"Freshworks", "Salesforce", "Accenture",
			}},
			{Name: "Streaming", Companies: []string{"Netflix", "Spotify", "Disney"}},
			{Name: "Gaming", Companies: []string{"Sony", "EA", "Ubisoft"}},
			{Name: "Retail", Companies: []string{"Walmart", "Target", "Lenskart"}},
			{Name: "Travel", Companies: []string{"OYO", "Cars24", "Urban Company"}},
		},
		CountPatterns: append([]string(nil), DefaultCountPatterns...),
	}
}

// LoadRuleSet reads a YAML rules file. Sections left empty in the file keep
// the built-in defaults.
func LoadRuleSet(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules %s: %w", path, err)
	}

	var fileRules RuleSet
	if err := yaml.Unmarshal(raw, &fileRules); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules %s: %w", path, err)
	}

	return mergeRuleSet(DefaultRuleSet(), fileRules), nil
}

func mergeRuleSet(base, override RuleSet) RuleSet {
	if len(override.Companies) > 0 {
		base.Companies = override.Companies
	}
	if len(override.ConfirmedTerms) > 0 {
		base.ConfirmedTerms = override.ConfirmedTerms
	}
	if len(override.SpeculativeTerms) > 0 {
		base.SpeculativeTerms = override.SpeculativeTerms
	}
	if len(override.IndiaKeywords) > 0 {
		base.IndiaKeywords = override.IndiaKeywords
	}
	if len(override.Industries) > 0 {
		base.Industries = override.Industries
	}
	if len(override.CountPatterns) > 0 {
		base.CountPatterns = override.CountPatterns
	}
	return base
}
