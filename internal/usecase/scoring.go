package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/rsouza-dev/leadforge/internal/entity"
)

// Factor weights. They sum to 1.0.
const (
	weightCompanySize         = 0.25
	weightIndustryFit         = 0.20
	weightContactCompleteness = 0.25
	weightEngagement          = 0.20
	weightDataQuality         = 0.10
)

// Priority thresholds over the final score.
const (
	priorityHighMin   = 70
	priorityMediumMin = 40
)

var highValueIndustries = []string{
	"software", "saas", "technology", "fintech", "healthcare",
}

var mediumValueIndustries = []string{
	"finance", "consulting", "manufacturing", "real estate", "education",
}

// ScoreLead rates lead quality from weighted signals. Pure and deterministic:
// no I/O, no clock, no randomness.
func ScoreLead(lead *entity.Lead, emailOpens, emailClicks int) ScoringResult {
	factors := ScoreFactors{
		CompanySize:         companySizeFactor(lead.CompanySize),
		IndustryFit:         industryFitFactor(lead.Industry),
		ContactCompleteness: contactCompletenessFactor(lead),
		Engagement:          engagementFactor(emailOpens, emailClicks),
		DataQuality:         dataQualityFactor(lead),
	}

	weighted := factors.CompanySize*weightCompanySize +
		factors.IndustryFit*weightIndustryFit +
		factors.ContactCompleteness*weightContactCompleteness +
		factors.Engagement*weightEngagement +
		factors.DataQuality*weightDataQuality

	score := int(math.Round(weighted))

	return ScoringResult{
		Score:       score,
		Priority:    priorityFor(score),
		Factors:     factors,
		Explanation: explain(factors, priorityFor(score)),
	}
}

func priorityFor(score int) Priority {
	switch {
	case score >= priorityHighMin:
		return PriorityHigh
	case score >= priorityMediumMin:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// companySizeFactor maps free-text size descriptors to fixed buckets.
// Unknown sizes score 30.
func companySizeFactor(size string) float64 {
	s := strings.ToLower(strings.TrimSpace(size))
	switch {
	case s == "":
		return 30
	case strings.Contains(s, "201-500"), strings.Contains(s, "501-1000"):
		return 90
	case strings.Contains(s, "51-200"):
		return 85
	case strings.Contains(s, "1000+"), strings.Contains(s, "enterprise"):
		return 70
	case strings.Contains(s, "11-50"):
		return 70
	case strings.Contains(s, "1-10"), strings.Contains(s, "solo"):
		return 50
	default:
		return 30
	}
}

func industryFitFactor(industry string) float64 {
	s := strings.ToLower(strings.TrimSpace(industry))
	if s == "" {
		return 40
	}
	for _, kw := range highValueIndustries {
		if strings.Contains(s, kw) {
			return 90
		}
	}
	for _, kw := range mediumValueIndustries {
		if strings.Contains(s, kw) {
			return 70
		}
	}
	return 50
}

// contactCompletenessFactor is a weighted presence check over the five
// contact fields: name 20, email 30, title 15, LinkedIn 20, phone 15.
func contactCompletenessFactor(lead *entity.Lead) float64 {
	total := 0.0
	if lead.Name != "" {
		total += 20
	}
	if lead.Email != "" {
		total += 30
	}
	if lead.Title != "" {
		total += 15
	}
	if lead.LinkedInURL != "" {
		total += 20
	}
	if lead.Phone != "" {
		total += 15
	}
	return total
}

// engagementFactor rewards clicks more than opens; both contributions are
// capped at 50. Zero engagement is a deliberate zero floor, not an
// unknown-value default.
func engagementFactor(opens, clicks int) float64 {
	score := math.Min(float64(opens)*10, 50) + math.Min(float64(clicks)*25, 50)
	return math.Min(score, 100)
}

// dataQualityFactor is the fraction of six key profile fields that are filled.
func dataQualityFactor(lead *entity.Lead) float64 {
	fields := []string{lead.Name, lead.Email, lead.Company, lead.Title, lead.Industry, lead.CompanySize}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(fields)) * 100
}

func explain(f ScoreFactors, p Priority) string {
	type named struct {
		label string
		value float64
	}
	all := []named{
		{"company size", f.CompanySize},
		{"industry fit", f.IndustryFit},
		{"contact completeness", f.ContactCompleteness},
		{"engagement", f.Engagement},
		{"data quality", f.DataQuality},
	}

	var strengths, weaknesses []string
	for _, n := range all {
		if n.value >= 70 {
			strengths = append(strengths, n.label)
		}
	}
	// Engagement gets a looser bar: cold leads are worth calling out.
	for _, n := range all {
		switch n.label {
		case "engagement":
			if n.value < 60 {
				weaknesses = append(weaknesses, n.label)
			}
		default:
			if n.value < 50 {
				weaknesses = append(weaknesses, n.label)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s priority lead.", strings.ToUpper(string(p)[:1])+string(p)[1:])
	if len(strengths) > 0 {
		fmt.Fprintf(&b, " Strong: %s.", strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&b, " Weak: %s.", strings.Join(weaknesses, ", "))
	}
	return b.String()
}
