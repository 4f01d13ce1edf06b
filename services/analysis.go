package services

import "github.com/cosalpha/ipo-tracker/models"

// analysisSections is the static DRHP/RHP-focused section skeleton. It is
// pure template content, not generated from the documents themselves.
var analysisSections = []models.AnalysisSection{
	{
		Title: "Risk Factors",
		Bullets: []string{
			"Internal risks (business concentration, execution, dependence on key people)",
			"External risks (competition, technology shifts, demand cycles)",
			"Financial risks (leverage, liquidity, cash flow volatility)",
			"Legal and regulatory risks",
			"Customer / supplier concentration",
		},
	},
	{
		Title: "Objects of the Issue",
		Bullets: []string{
			"Fresh issue utilisation (capex, working capital, debt repayment)",
			"Offer for Sale (OFS): selling shareholders and quantum",
			"Post-issue capital allocation and impact on balance sheet",
		},
	},
	{
		Title: "Business Overview",
		Bullets: []string{
			"Business model and revenue streams",
			"Key products / services and segments",
			"Key customers and geographic mix",
			"Competitive positioning and moats",
		},
	},
	{
		Title: "Financials",
		Bullets: []string{
			"Revenue and EBITDA trend (3 to 5 years)",
			"Margin profile and ROE / ROCE (if disclosed)",
			"Working capital cycle and cash conversion",
			"Related party transactions",
			"Auditor qualifications or emphases of matter",
		},
	},
	{
		Title: "Promoters & Ownership",
		Bullets: []string{
			"Promoter background and track record",
			"Group structure and related entities",
			"Pre-IPO vs post-IPO shareholding",
			"Any pledges / encumbrances or special rights",
		},
	},
	{
		Title: "Key Disclosures",
		Bullets: []string{
			"Material litigation and contingent liabilities",
			"Regulatory and compliance matters",
			"Lock-in details (promoters / pre-IPO investors)",
			"Any special shareholder agreements",
		},
	},
	{
		Title: "Macroeconomic & Sector Context",
		Bullets: []string{
			"Sector outlook and linkage to GDP growth",
			"Interest rate sensitivity",
			"Inflation impact on costs / pricing power",
			"Regulatory tailwinds and headwinds",
			"Global trends relevant to the business",
		},
	},
	{
		Title: "Peer Valuation Context",
		Bullets: []string{
			"IPO valuation multiples vs listed peers (P/E, EV/EBITDA, P/BV)",
			"Premium / discount vs peer median",
			"Growth vs valuation trade-off",
			"Structural differences vs peer set (balance sheet, risk)",
		},
	},
	{
		Title: "Investment Considerations",
		Bullets: []string{
			"Key positives: structural strengths, quality of franchise, balance sheet, macro tailwinds",
			"Key concerns: concentration, governance, leverage, execution risk, regulatory overhang",
			"Post-listing watchlist: KPIs to track in quarterly results",
			"Macro timing assessment: where this IPO sits in the liquidity / rate cycle",
		},
	},
}

const analysisNote = "This is a DRHP/RHP-first analysis template. Each section lists what a full " +
	"review of the filing would cover; the document itself is not ingested."

// BuildAnalysisTemplate returns the analysis skeleton for a company with
// its resolved or generic filing link attached
func BuildAnalysisTemplate(companyName, documentURL string, resolved bool) models.AnalysisTemplate {
	return models.AnalysisTemplate{
		CompanyName: companyName,
		DocumentURL: documentURL,
		Resolved:    resolved,
		Sections:    analysisSections,
		Note:        analysisNote,
	}
}
