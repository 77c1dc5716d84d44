package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/companylookup/internal/domain"
)

// The analyzer derives a rule-based educational read on a company from
// its quote and filing activity. There is no model behind it, just
// fixed thresholds. The output is framed as educational material and
// every report carries a disclaimer saying so. Scoring starts from a
// neutral baseline of 5 and moves with momentum, volatility, size and
// filing hygiene.

const disclaimer = "Educational analysis only. This is not investment advice. " +
	"Always consult licensed financial advisors before making investment decisions."

// baseConsiderations opens every report; risk and confidence notes
// get prepended to it.
var baseConsiderations = []string{
	"This analysis is for educational purposes only - not financial advice",
	"Always consult with qualified financial professionals before investing",
	"Consider your personal risk tolerance and investment timeline",
	"Diversification is crucial for managing portfolio risk",
	"Past performance does not guarantee future results",
}

// Summary heads the report with identity and overall stance.
type Summary struct {
	CompanyName          string    `json:"company_name"`
	Ticker               string    `json:"ticker"`
	AnalysisDate         time.Time `json:"analysis_date"`
	EducationalSentiment string    `json:"educational_sentiment"`
	ConfidenceLevel      string    `json:"confidence_level"`
}

// RiskAssessment accumulates scored risk signals.
type RiskAssessment struct {
	OverallRiskLevel string   `json:"overall_risk_level"`
	RiskFactors      []string `json:"risk_factors"`
	PositiveFactors  []string `json:"positive_factors"`
	RiskScore        int      `json:"risk_score"`
}

// TechnicalAnalysis summarizes price and volume behavior.
type TechnicalAnalysis struct {
	PriceTrend           string `json:"price_trend"`
	VolatilityAssessment string `json:"volatility_assessment"`
	VolumeAnalysis       string `json:"volume_analysis"`
}

// FundamentalInsights summarizes company standing.
type FundamentalInsights struct {
	MarketPosition  string `json:"market_position"`
	FinancialHealth string `json:"financial_health"`
	GrowthProspects string `json:"growth_prospects"`
}

// Report is the full educational analysis attached to a lookup.
type Report struct {
	Summary                   Summary             `json:"summary"`
	RiskAssessment            RiskAssessment      `json:"risk_assessment"`
	TechnicalAnalysis         TechnicalAnalysis   `json:"technical_analysis"`
	FundamentalInsights       FundamentalInsights `json:"fundamental_insights"`
	RecentDevelopments        []string            `json:"recent_developments"`
	EducationalConsiderations []string            `json:"educational_considerations"`
	Disclaimer                string              `json:"disclaimer"`
}

// Analyze builds a report for a resolved company. quote and filings
// may each be nil or empty; the confidence level reflects how much
// data was actually available.
func Analyze(company domain.Company, quote *domain.Quote, filings *domain.FilingSet) *Report {
	r := &Report{
		Summary: Summary{
			CompanyName:          company.Name,
			Ticker:               company.Ticker,
			AnalysisDate:         time.Now().UTC(),
			EducationalSentiment: "neutral",
			ConfidenceLevel:      "moderate",
		},
		RiskAssessment: RiskAssessment{
			OverallRiskLevel: "moderate",
			RiskFactors:      []string{},
			PositiveFactors:  []string{},
			RiskScore:        5,
		},
		TechnicalAnalysis: TechnicalAnalysis{
			PriceTrend:           "neutral",
			VolatilityAssessment: "moderate",
			VolumeAnalysis:       "average",
		},
		FundamentalInsights: FundamentalInsights{
			MarketPosition:  "unknown",
			FinancialHealth: "unknown",
			GrowthProspects: "unknown",
		},
		RecentDevelopments:        []string{},
		EducationalConsiderations: append([]string{}, baseConsiderations...),
		Disclaimer:                disclaimer,
	}

	if quote != nil {
		analyzeQuote(r, quote)
	}
	analyzeFilings(r, company, filings)
	finalize(r, quote, filings)

	return r
}

// analyzeQuote applies momentum, volatility, market cap and volume
// rules.
func analyzeQuote(r *Report, quote *domain.Quote) {
	changePercent := 0.0
	if quote.ChangePercent != nil {
		changePercent = *quote.ChangePercent
	}

	switch {
	case changePercent > 5:
		r.TechnicalAnalysis.PriceTrend = "strong_positive"
		r.addPositive(fmt.Sprintf("Strong positive price momentum (+%.1f%%)", changePercent))
		r.Summary.EducationalSentiment = "optimistic"
	case changePercent > 2:
		r.TechnicalAnalysis.PriceTrend = "positive"
		r.addPositive(fmt.Sprintf("Positive price momentum (+%.1f%%)", changePercent))
	case changePercent < -5:
		r.TechnicalAnalysis.PriceTrend = "strong_negative"
		r.addRisk(fmt.Sprintf("Significant price decline (%.1f%%)", changePercent), 2)
		r.Summary.EducationalSentiment = "cautious"
	case changePercent < -2:
		r.TechnicalAnalysis.PriceTrend = "negative"
		r.addRisk(fmt.Sprintf("Recent price weakness (%.1f%%)", changePercent), 1)
	}

	abs := changePercent
	if abs < 0 {
		abs = -abs
	}
	if abs > 5 {
		r.TechnicalAnalysis.VolatilityAssessment = "high"
		r.addRisk("High price volatility observed", 1)
	} else if abs < 1 {
		r.TechnicalAnalysis.VolatilityAssessment = "low"
		r.addPositive("Low price volatility - more stable")
	}

	if quote.MarketCap != nil && *quote.MarketCap > 0 {
		mc := *quote.MarketCap
		switch {
		case mc > 200_000_000_000:
			r.FundamentalInsights.MarketPosition = "mega_cap_leader"
			r.addPositive("Mega-cap company with strong market position")
			r.RiskAssessment.RiskScore -= 2
		case mc > 50_000_000_000:
			r.FundamentalInsights.MarketPosition = "large_cap"
			r.addPositive("Large-cap stability and institutional backing")
			r.RiskAssessment.RiskScore--
		case mc > 10_000_000_000:
			r.FundamentalInsights.MarketPosition = "established_company"
			r.addPositive("Well-established company with proven track record")
		case mc < 2_000_000_000:
			r.FundamentalInsights.MarketPosition = "small_cap"
			r.addRisk("Small-cap volatility and liquidity risks", 2)
		}
	}

	if quote.Volume > 10_000_000 {
		r.TechnicalAnalysis.VolumeAnalysis = "high"
		r.addPositive("High trading volume indicates strong investor interest")
	} else if quote.Volume > 0 && quote.Volume < 1_000_000 {
		r.TechnicalAnalysis.VolumeAnalysis = "low"
		r.addRisk("Low trading volume may indicate limited liquidity", 0)
	}
}

// analyzeFilings applies filing-activity rules. Without filings the
// company's CIK decides whether that is expected or a gap.
func analyzeFilings(r *Report, company domain.Company, filings *domain.FilingSet) {
	if filings == nil || len(filings.Filings) == 0 {
		if !company.HasCIK() {
			r.RecentDevelopments = append(r.RecentDevelopments,
				"No SEC filings available - may be non-US company or recent IPO")
		} else {
			r.addRisk("SEC filings not accessible for analysis", 0)
		}
		return
	}

	var eightK, tenK, tenQ []domain.Filing
	for _, f := range filings.Filings {
		switch strings.ToUpper(f.Form) {
		case "8-K", "8-K/A":
			eightK = append(eightK, f)
		case "10-K", "10-K/A":
			tenK = append(tenK, f)
		case "10-Q", "10-Q/A":
			tenQ = append(tenQ, f)
		}
	}

	if len(eightK) > 0 {
		if len(eightK) > 3 {
			r.addRisk("Multiple recent 8-K filings may indicate significant corporate changes", 0)
			r.RecentDevelopments = append(r.RecentDevelopments,
				fmt.Sprintf("Multiple material events reported (%d 8-K filings)", len(eightK)))
		} else {
			plural := ""
			if len(eightK) > 1 {
				plural = "s"
			}
			r.RecentDevelopments = append(r.RecentDevelopments,
				fmt.Sprintf("Recent material events reported (%d 8-K filing%s)", len(eightK), plural))
		}
	}

	// Filings arrive newest first, so the first 10-K is the latest.
	if len(tenK) > 0 {
		if filed, err := time.Parse("2006-01-02", tenK[0].FilingDate); err == nil {
			daysSince := int(time.Since(filed).Hours() / 24)
			if daysSince < 90 {
				r.addPositive("Recent annual report filed - up-to-date financial disclosure")
				r.RecentDevelopments = append(r.RecentDevelopments, "Recent 10-K annual report filed")
			} else if daysSince > 450 {
				r.addRisk("Annual reporting appears overdue", 0)
			}
		}
	}

	if len(tenQ) > 0 {
		r.addPositive("Regular quarterly reporting demonstrates good corporate governance")
		r.RecentDevelopments = append(r.RecentDevelopments,
			fmt.Sprintf("Recent quarterly filings (%d 10-Q reports)", len(tenQ)))
	}

	if filings.TotalFilings > 20 {
		r.addPositive("Comprehensive SEC filing history shows transparency")
	} else if filings.TotalFilings < 5 {
		r.addRisk("Limited SEC filing history", 0)
	}
}

// finalize settles the overall risk level, sentiment and confidence
// once all signals are in.
func finalize(r *Report, quote *domain.Quote, filings *domain.FilingSet) {
	score := r.RiskAssessment.RiskScore
	positives := len(r.RiskAssessment.PositiveFactors)
	risks := len(r.RiskAssessment.RiskFactors)

	if score >= 8 || risks > positives+1 {
		r.RiskAssessment.OverallRiskLevel = "high"
		r.Summary.EducationalSentiment = "cautious"
		r.prependConsideration("Higher risk factors identified - requires careful consideration of risk tolerance")
	} else if score <= 3 && positives > risks {
		r.RiskAssessment.OverallRiskLevel = "low"
		if r.Summary.EducationalSentiment == "neutral" {
			r.Summary.EducationalSentiment = "optimistic"
		}
		r.prependConsideration("Lower risk profile identified, but diversification remains important")
	}

	hasQuote := quote != nil
	hasFilings := filings != nil && len(filings.Filings) > 0
	switch {
	case hasQuote && hasFilings:
		r.Summary.ConfidenceLevel = "high"
	case hasQuote || hasFilings:
		r.Summary.ConfidenceLevel = "moderate"
	default:
		r.Summary.ConfidenceLevel = "low"
		r.prependConsideration("Limited data available - analysis confidence is low")
	}
}

func (r *Report) addPositive(msg string) {
	r.RiskAssessment.PositiveFactors = append(r.RiskAssessment.PositiveFactors, msg)
}

func (r *Report) addRisk(msg string, scoreDelta int) {
	r.RiskAssessment.RiskFactors = append(r.RiskAssessment.RiskFactors, msg)
	r.RiskAssessment.RiskScore += scoreDelta
}

func (r *Report) prependConsideration(msg string) {
	r.EducationalConsiderations = append([]string{msg}, r.EducationalConsiderations...)
}
